package hardware

import (
	"time"

	"vehicle-emulator/internal/types"
)

const (
	DefaultSerialBaud = 115200

	gpioConsumer    = "vehicle-emulator"
	buttonDebounce  = 20 * time.Millisecond
	canSendTimeout  = 5 * time.Millisecond
	serialReadDelay = 100 * time.Millisecond
)

// DefaultButtonLines is the bench wiring of the steering-wheel push-buttons
// on gpiochip0.
var DefaultButtonLines = map[types.ButtonCode]int{
	types.ButtonUp:       5,
	types.ButtonDown:     6,
	types.ButtonLeft:     13,
	types.ButtonRight:    19,
	types.ButtonOK:       26,
	types.ButtonSettings: 21,
}
