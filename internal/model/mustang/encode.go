package mustang

import (
	"encoding/binary"

	"vehicle-emulator/internal/model"
	"vehicle-emulator/internal/types"
)

// CAN identifiers emitted by the Mustang body/powertrain modules.
const (
	IDButton        uint32 = 0x081
	IDDrivetrain    uint32 = 0x109
	IDTemperature   uint32 = 0x156
	IDSpeed         uint32 = 0x202
	IDRPM           uint32 = 0x204
	IDBlinkerMirror uint32 = 0x3B2
	IDBlinker       uint32 = 0x3B3
	IDTirePressure  uint32 = 0x3B5
	IDVIN           uint32 = 0x40A
	IDStability     uint32 = 0x416
)

const (
	vinFrameCount    = 3
	vinCharsPerFrame = 6
	vinTag           = 0xC1
	vinPad           = 0xFF

	speedScale = 159
	kpaPerPSI  = 6.895

	blinkerRightBit = 0x08 // byte 4
	blinkerLeftBit  = 0x40 // byte 6
)

var (
	idleTemplate        = model.Payload{}
	rpmTemplate         = model.Payload{0x00, 0x00, 0x00, 0x09, 0xC4, 0x00, 0x00, 0x00}
	speedTemplate       = model.Payload{0x00, 0x00, 0x00, 0x00, 0x60, 0x00, 0x25, 0x44}
	temperatureTemplate = model.Payload{0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x00, 0x00}
	blinkerTemplate     = model.Payload{0x40, 0x48, 0xC0, 0x10, 0x10, 0x00, 0x00, 0x02}
	drivetrainFrame     = model.Payload{0x00, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x28}
	stabilityFrame      = model.Payload{0x50, 0x00, 0xFE, 0x00, 0x01, 0x00, 0x00, 0x00}
)

// buttonCodes holds the two leading bytes of the 0x081 frame per button.
var buttonCodes = map[types.ButtonCode][2]byte{
	types.ButtonUp:       {0x08, 0x00},
	types.ButtonDown:     {0x01, 0x00},
	types.ButtonLeft:     {0x02, 0x00},
	types.ButtonRight:    {0x04, 0x00},
	types.ButtonOK:       {0x10, 0x00},
	types.ButtonSettings: {0x46, 0x01},
}

// encoder renders the payloads for one identifier from the current state.
type encoder func(s *State, phase BlinkPhase) []model.Payload

func single(p model.Payload) []model.Payload {
	return []model.Payload{p}
}

// rpmField is the 16-bit tachometer value: half the engine speed.
func rpmField(rpm int) uint16 {
	return uint16((rpm / 2) & 0xFFFF)
}

// speedField is the 16-bit vehicle speed value, truncated to 16 bits.
func speedField(speed int) uint16 {
	return uint16((speed * speedScale) & 0xFFFF)
}

// temperatureByte converts Fahrenheit to the offset Celsius byte. Division
// truncates toward zero and the result wraps modulo 256.
func temperatureByte(fahrenheit int) uint8 {
	celsius := (fahrenheit - 32) * 5 / 9
	return uint8((celsius + 60) & 0xFF)
}

// tireByte converts PSI to kPa, rounding half up in single precision, and
// wraps modulo 256.
func tireByte(psi float32) uint8 {
	kpa := int32(psi*kpaPerPSI + 0.5)
	return uint8(kpa & 0xFF)
}

// packVIN splits a 17-character VIN over three payloads. Byte 0 is the tag,
// byte 1 the frame index, bytes 2-7 up to six characters; the last byte of
// the third payload is the pad.
func packVIN(vin string) [vinFrameCount]model.Payload {
	var frames [vinFrameCount]model.Payload
	for i := range frames {
		frames[i][0] = vinTag
		frames[i][1] = byte(i)
	}
	for i := 0; i < len(vin) && i < VINLength; i++ {
		frames[i/vinCharsPerFrame][i%vinCharsPerFrame+2] = vin[i]
	}
	frames[vinFrameCount-1][7] = vinPad
	return frames
}

func encodeButton(s *State, _ BlinkPhase) []model.Payload {
	if s.button.active {
		return single(s.button.frame)
	}
	return single(idleTemplate)
}

func encodeRPM(s *State, _ BlinkPhase) []model.Payload {
	p := rpmTemplate
	binary.BigEndian.PutUint16(p[3:5], rpmField(s.rpm))
	return single(p)
}

func encodeSpeed(s *State, _ BlinkPhase) []model.Payload {
	p := speedTemplate
	binary.BigEndian.PutUint16(p[6:8], speedField(s.speed))
	return single(p)
}

func encodeTemperature(s *State, _ BlinkPhase) []model.Payload {
	p := temperatureTemplate
	p[0] = s.coolant
	p[1] = s.oil
	return single(p)
}

func encodeTirePressure(s *State, _ BlinkPhase) []model.Payload {
	var p model.Payload
	for i, psi := range s.tirePSI {
		p[2*i+1] = tireByte(psi)
	}
	return single(p)
}

func encodeVIN(s *State, _ BlinkPhase) []model.Payload {
	frames := s.vinFrames
	return frames[:]
}

// encodeBlinker sets the lamp bits only during the on half of the shared
// phase, so left, right and hazards flash together.
func encodeBlinker(s *State, phase BlinkPhase) []model.Payload {
	p := blinkerTemplate
	if phase.On {
		if s.right {
			p[4] |= blinkerRightBit
		}
		if s.left {
			p[6] |= blinkerLeftBit
		}
	}
	return single(p)
}

func constant(p model.Payload) encoder {
	return func(*State, BlinkPhase) []model.Payload {
		return single(p)
	}
}
