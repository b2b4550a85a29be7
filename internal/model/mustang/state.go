package mustang

import (
	"fmt"
	"math"

	"vehicle-emulator/internal/model"
	"vehicle-emulator/internal/types"
)

const (
	VINLength = 17

	defaultVIN     = "10203040506070809"
	defaultTirePSI = 35.0

	// maxTirePSI bounds accepted pressures so the kPa conversion stays in
	// integer range; bytes above 255 kPa still wrap.
	maxTirePSI = 1000

	// buttonHold is how long a momentary press is reported, in ms.
	buttonHold = 100
)

type buttonState struct {
	code      types.ButtonCode
	pressedAt int64
	active    bool
	frame     model.Payload
}

// State is the simulated vehicle. Every setter either applies its change or
// returns an error and leaves the state untouched.
type State struct {
	rpm     int
	speed   int
	tirePSI [types.TireCount]float32
	coolant uint8
	oil     uint8

	vin       string
	vinFrames [vinFrameCount]model.Payload

	left  bool
	right bool

	button buttonState
}

func NewState() *State {
	s := &State{vin: defaultVIN}
	for i := range s.tirePSI {
		s.tirePSI[i] = defaultTirePSI
	}
	s.vinFrames = packVIN(s.vin)
	return s
}

func (s *State) SetRPM(rpm int) error {
	if rpm < 0 {
		return fmt.Errorf("%w: rpm %d is negative", ErrInvalidArgument, rpm)
	}
	s.rpm = rpm
	return nil
}

func (s *State) SetSpeed(speed int) error {
	if speed < 0 {
		return fmt.Errorf("%w: speed %d is negative", ErrInvalidArgument, speed)
	}
	s.speed = speed
	return nil
}

func (s *State) SetTirePressure(pos types.TirePosition, psi float32) error {
	if pos < 0 || pos >= types.TireCount {
		return fmt.Errorf("%w: %v", ErrUnknownTire, pos)
	}
	f := float64(psi)
	if math.IsNaN(f) || math.IsInf(f, 0) || psi < 0 || psi > maxTirePSI {
		return fmt.Errorf("%w: tire pressure %v out of range", ErrInvalidArgument, psi)
	}
	s.tirePSI[pos] = psi
	return nil
}

// SetVIN replaces the VIN and re-packs the three VIN payloads.
func (s *State) SetVIN(vin string) error {
	if len(vin) != VINLength {
		return fmt.Errorf("%w: got %d characters, want %d", ErrVINLength, len(vin), VINLength)
	}
	s.vin = vin
	s.vinFrames = packVIN(vin)
	return nil
}

// SetTemperature stores the already-offset byte for the given channel.
func (s *State) SetTemperature(ch types.TempChannel, fahrenheit int) error {
	b := temperatureByte(fahrenheit)
	switch ch {
	case types.TempCoolant:
		s.coolant = b
	case types.TempOil:
		s.oil = b
	default:
		return fmt.Errorf("%w: %d", ErrUnknownTemperature, int(ch))
	}
	return nil
}

func (s *State) SetBlinker(mode types.BlinkerMode) error {
	switch mode {
	case types.BlinkerLeft:
		s.left, s.right = true, false
	case types.BlinkerRight:
		s.left, s.right = false, true
	case types.BlinkerBoth:
		s.left, s.right = true, true
	case types.BlinkerOff:
		s.left, s.right = false, false
	default:
		return fmt.Errorf("%w: %d", ErrUnknownBlinker, int(mode))
	}
	return nil
}

// ToggleHazards flips both blinker flags independently of their current values.
func (s *State) ToggleHazards() {
	s.left = !s.left
	s.right = !s.right
}

// PressButton arms the hold window for code starting at now.
func (s *State) PressButton(code types.ButtonCode, now int64) error {
	pair, ok := buttonCodes[code]
	if !ok {
		return fmt.Errorf("%w: button %v", ErrInvalidArgument, code)
	}
	s.button.code = code
	s.button.frame[0] = pair[0]
	s.button.frame[1] = pair[1]
	s.button.pressedAt = now
	s.button.active = true
	return nil
}

// expireButton releases the button once the hold window has passed. The
// ancillary flag byte is cleared with it.
func (s *State) expireButton(now int64) {
	if s.button.active && now-s.button.pressedAt <= buttonHold {
		return
	}
	s.button.active = false
	s.button.frame[1] = 0x00
}

func (s *State) snapshot() types.VehicleSnapshot {
	snap := types.VehicleSnapshot{
		RPM:          s.rpm,
		Speed:        s.speed,
		TirePSI:      s.tirePSI,
		CoolantByte:  s.coolant,
		OilByte:      s.oil,
		VIN:          s.vin,
		LeftBlinker:  s.left,
		RightBlinker: s.right,
		ButtonActive: s.button.active,
	}
	if s.button.active {
		snap.Button = s.button.code
	}
	return snap
}
