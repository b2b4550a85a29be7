package mustang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vehicle-emulator/internal/types"
)

var (
	ErrUnknownCommand     = errors.New("unknown command")
	ErrArity              = errors.New("wrong number of arguments")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnknownTire        = errors.New("tire name not recognized")
	ErrVINLength          = errors.New("invalid VIN length")
	ErrUnknownTemperature = errors.New("unknown TEMP type")
	ErrUnknownBlinker     = errors.New("unknown blinker mode")
)

// CommandKind is the decoded command name.
type CommandKind int

const (
	CmdRPM CommandKind = iota + 1
	CmdSpeed
	CmdTire
	CmdVIN
	CmdTemp
	CmdBlinker
	CmdHazards
	CmdButton
)

func (k CommandKind) String() string {
	switch k {
	case CmdRPM:
		return "RPM"
	case CmdSpeed:
		return "SPEED"
	case CmdTire:
		return "TIRE"
	case CmdVIN:
		return "VIN"
	case CmdTemp:
		return "TEMP"
	case CmdBlinker:
		return "BLINKER"
	case CmdHazards:
		return "HAZARDS"
	case CmdButton:
		return "BUTTON"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is a fully decoded operator command. Only the fields relevant to
// Kind are set.
type Command struct {
	Kind    CommandKind
	Value   int
	Tire    types.TirePosition
	PSI     float32
	VIN     string
	Temp    types.TempChannel
	Blinker types.BlinkerMode
	Button  types.ButtonCode
}

// argCount is the number of arguments each command takes after its name.
var argCount = map[string]int{
	"RPM":     1,
	"SPEED":   1,
	"TIRE":    2,
	"VIN":     1,
	"TEMP":    2,
	"BLINKER": 1,
	"HAZARDS": 0,
}

// ParseCommand decodes a tokenized line. Text is interpreted here and
// nowhere else.
func ParseCommand(tokens []string) (Command, error) {
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	name := strings.ToUpper(tokens[0])
	args := tokens[1:]

	if code, ok := types.ParseButton(name); ok {
		if len(args) != 0 {
			return Command{}, fmt.Errorf("%w: %s takes no arguments, got %d", ErrArity, name, len(args))
		}
		return Command{Kind: CmdButton, Button: code}, nil
	}

	want, ok := argCount[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0])
	}
	if len(args) != want {
		return Command{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, name, want, len(args))
	}

	switch name {
	case "RPM":
		v, err := parseInt(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdRPM, Value: v}, nil

	case "SPEED":
		v, err := parseInt(args[0])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdSpeed, Value: v}, nil

	case "TIRE":
		pos, ok := types.ParseTirePosition(args[0])
		if !ok {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownTire, args[0])
		}
		psi, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 32)
		if err != nil {
			return Command{}, fmt.Errorf("%w: pressure %q", ErrInvalidArgument, args[1])
		}
		return Command{Kind: CmdTire, Tire: pos, PSI: float32(psi)}, nil

	case "VIN":
		if len(args[0]) != VINLength {
			return Command{}, fmt.Errorf("%w: got %d characters, want %d", ErrVINLength, len(args[0]), VINLength)
		}
		return Command{Kind: CmdVIN, VIN: args[0]}, nil

	case "TEMP":
		ch, ok := types.ParseTempChannel(strings.ToUpper(args[0]))
		if !ok {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownTemperature, args[0])
		}
		v, err := parseInt(args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdTemp, Temp: ch, Value: v}, nil

	case "BLINKER":
		mode, ok := types.ParseBlinkerMode(strings.ToUpper(args[0]))
		if !ok {
			return Command{}, fmt.Errorf("%w: %q", ErrUnknownBlinker, args[0])
		}
		return Command{Kind: CmdBlinker, Blinker: mode}, nil

	case "HAZARDS":
		return Command{Kind: CmdHazards}, nil
	}

	return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0])
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, s)
	}
	return v, nil
}

// apply mutates the state for an already decoded command.
func (m *Model) apply(cmd Command, now int64) error {
	s := m.state
	switch cmd.Kind {
	case CmdRPM:
		return s.SetRPM(cmd.Value)

	case CmdSpeed:
		return s.SetSpeed(cmd.Value)

	case CmdTire:
		if err := s.SetTirePressure(cmd.Tire, cmd.PSI); err != nil {
			return err
		}
		m.log.Infof("Updated %s to %.2f PSI", cmd.Tire, cmd.PSI)

	case CmdVIN:
		if err := s.SetVIN(cmd.VIN); err != nil {
			return err
		}
		m.log.Infof("Updated VIN to: %s", cmd.VIN)

	case CmdTemp:
		if err := s.SetTemperature(cmd.Temp, cmd.Value); err != nil {
			return err
		}
		m.log.Infof("Updated %s temperature to %d°F", cmd.Temp, cmd.Value)

	case CmdBlinker:
		return s.SetBlinker(cmd.Blinker)

	case CmdHazards:
		s.ToggleHazards()

	case CmdButton:
		return s.PressButton(cmd.Button, now)

	default:
		return fmt.Errorf("%w: %v", ErrUnknownCommand, cmd.Kind)
	}
	return nil
}
