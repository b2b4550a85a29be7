package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCommand = errors.New("empty command")
	ErrBadArgument  = errors.New("invalid argument")
)

// Handle executes one request. MODEL and VERBOSE are handled here; every
// other command goes to the active model.
func (e *Emulator) Handle(req Request) {
	err := e.dispatch(req.Tokens)
	if err != nil {
		e.logger.Warnf("Command %v from %s failed: %v", req.Tokens, req.Source, err)
	} else {
		e.logger.Debugf("Command %v from %s applied", req.Tokens, req.Source)
	}
	if req.Reply != nil {
		req.Reply(err)
	}
}

func (e *Emulator) dispatch(tokens []string) error {
	if len(tokens) == 0 {
		return ErrEmptyCommand
	}

	switch strings.ToUpper(tokens[0]) {
	case "MODEL":
		if len(tokens) != 2 {
			return fmt.Errorf("%w: usage MODEL <name>", ErrBadArgument)
		}
		return e.switchModel(tokens[1])
	case "VERBOSE":
		if len(tokens) != 2 {
			return fmt.Errorf("%w: usage VERBOSE <ON|OFF>", ErrBadArgument)
		}
		return e.setVerbose(tokens[1])
	}

	if err := e.active.HandleCommand(tokens); err != nil {
		return err
	}
	e.publishState()
	return nil
}

func (e *Emulator) switchModel(name string) error {
	prev := e.active.Name()
	if err := e.activate(name); err != nil {
		return err
	}
	e.logger.Infof("Switched model %s -> %s", prev, e.active.Name())
	e.publishState()
	return nil
}

// activate builds a fresh instance of the named model and initialises it
// with the transport. The previous model is kept on failure.
func (e *Emulator) activate(name string) error {
	m, err := e.registry.New(name, e.clock)
	if err != nil {
		return err
	}
	m.Init(e.transport)
	e.active = m
	return nil
}

func (e *Emulator) setVerbose(arg string) error {
	var on bool
	switch strings.ToUpper(arg) {
	case "ON", "1", "TRUE":
		on = true
	case "OFF", "0", "FALSE":
		on = false
	default:
		return fmt.Errorf("%w: VERBOSE %s", ErrBadArgument, arg)
	}
	e.gate.SetVerbose(on)
	e.logger.Infof("Verbose frame logging enabled=%v", on)
	return nil
}
