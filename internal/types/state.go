package types

import "fmt"

// ButtonCode identifies a steering-wheel / cluster navigation button.
type ButtonCode int

const (
	ButtonNone ButtonCode = iota
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonOK
	ButtonSettings
)

func (b ButtonCode) String() string {
	switch b {
	case ButtonUp:
		return "UP"
	case ButtonDown:
		return "DOWN"
	case ButtonLeft:
		return "LEFT"
	case ButtonRight:
		return "RIGHT"
	case ButtonOK:
		return "OK"
	case ButtonSettings:
		return "SETTINGS"
	default:
		return "NONE"
	}
}

// ParseButton maps a bare command token onto a button code.
func ParseButton(s string) (ButtonCode, bool) {
	switch s {
	case "UP":
		return ButtonUp, true
	case "DOWN":
		return ButtonDown, true
	case "LEFT":
		return ButtonLeft, true
	case "RIGHT":
		return ButtonRight, true
	case "OK":
		return ButtonOK, true
	case "SETTINGS":
		return ButtonSettings, true
	default:
		return ButtonNone, false
	}
}

// BlinkerMode is the turn-signal stalk position.
type BlinkerMode int

const (
	BlinkerOff BlinkerMode = iota
	BlinkerLeft
	BlinkerRight
	BlinkerBoth
)

func (m BlinkerMode) String() string {
	switch m {
	case BlinkerLeft:
		return "left"
	case BlinkerRight:
		return "right"
	case BlinkerBoth:
		return "both"
	default:
		return "off"
	}
}

func ParseBlinkerMode(s string) (BlinkerMode, bool) {
	switch s {
	case "LEFT":
		return BlinkerLeft, true
	case "RIGHT":
		return BlinkerRight, true
	case "BOTH":
		return BlinkerBoth, true
	case "OFF":
		return BlinkerOff, true
	default:
		return BlinkerOff, false
	}
}

// TirePosition indexes the four wheels in the order the TPMS frame carries them.
type TirePosition int

const (
	TireDriverFront TirePosition = iota
	TirePassengerFront
	TirePassengerRear
	TireDriverRear
	TireCount
)

var tireNames = [TireCount]string{
	"Driver Front",
	"Passenger Front",
	"Passenger Rear",
	"Driver Rear",
}

func (t TirePosition) String() string {
	if t < 0 || t >= TireCount {
		return fmt.Sprintf("tire(%d)", int(t))
	}
	return tireNames[t]
}

func ParseTirePosition(s string) (TirePosition, bool) {
	for i, name := range tireNames {
		if s == name {
			return TirePosition(i), true
		}
	}
	return 0, false
}

// TempChannel selects which engine temperature a TEMP command addresses.
type TempChannel int

const (
	TempCoolant TempChannel = iota
	TempOil
)

func (c TempChannel) String() string {
	if c == TempOil {
		return "OIL"
	}
	return "COOLANT"
}

func ParseTempChannel(s string) (TempChannel, bool) {
	switch s {
	case "COOLANT":
		return TempCoolant, true
	case "OIL":
		return TempOil, true
	default:
		return 0, false
	}
}

// VehicleSnapshot is a read-only copy of a model's state, published to Redis
// after every accepted command.
type VehicleSnapshot struct {
	Model        string
	RPM          int
	Speed        int
	TirePSI      [TireCount]float32
	CoolantByte  uint8
	OilByte      uint8
	VIN          string
	LeftBlinker  bool
	RightBlinker bool
	Button       ButtonCode
	ButtonActive bool
}

// Blinker folds the two blinker flags back into a stalk position.
func (s VehicleSnapshot) Blinker() BlinkerMode {
	switch {
	case s.LeftBlinker && s.RightBlinker:
		return BlinkerBoth
	case s.LeftBlinker:
		return BlinkerLeft
	case s.RightBlinker:
		return BlinkerRight
	default:
		return BlinkerOff
	}
}
