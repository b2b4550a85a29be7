// Package mustang emulates the body and powertrain CAN traffic of a Ford
// Mustang: a state store, per-identifier encoders, a command interpreter
// and a rate-limited emission scheduler behind a three-call facade.
package mustang

import (
	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"
	"vehicle-emulator/internal/types"
)

const Name = "mustang"

type Model struct {
	state     *State
	sched     *scheduler
	transport model.Transport
	clock     model.Clock
	log       *logger.Logger
	gate      *logger.Gate

	// lastNow stands in for the clock when none was supplied.
	lastNow int64
}

type Option func(*Model)

// WithLogger sets the logger used for command diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(m *Model) { m.log = l.WithTag("MUSTANG") }
}

// WithGate sets the throttled console used for per-frame diagnostics.
func WithGate(g *logger.Gate) Option {
	return func(m *Model) { m.gate = g }
}

func New(clock model.Clock, opts ...Option) *Model {
	m := &Model{
		state: NewState(),
		clock: clock,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sched = newScheduler(m.gate)
	return m
}

// Factory returns a registry factory that shares l and g across instances.
func Factory(l *logger.Logger, g *logger.Gate) model.Factory {
	return func(clock model.Clock) model.Model {
		return New(clock, WithLogger(l), WithGate(g))
	}
}

func (m *Model) Name() string { return Name }

func (m *Model) Init(t model.Transport) {
	m.transport = t
	m.state.vinFrames = packVIN(m.state.vin)
	m.log.Debugf("Initialized with VIN %s", m.state.vin)
}

// Tick is a no-op until Init has supplied a transport.
func (m *Model) Tick(now int64) {
	m.lastNow = now
	if m.transport == nil {
		return
	}
	m.sched.tick(now, m.state, m.transport)
}

// HandleCommand decodes and applies one command. Rejected commands are
// logged and returned; the state is left unchanged.
func (m *Model) HandleCommand(tokens []string) error {
	cmd, err := ParseCommand(tokens)
	if err != nil {
		m.log.Warnf("Rejected command %q: %v", tokens, err)
		return err
	}
	if err := m.apply(cmd, m.now()); err != nil {
		m.log.Warnf("Rejected command %q: %v", tokens, err)
		return err
	}
	m.log.Debugf("Applied %v command", cmd.Kind)
	return nil
}

func (m *Model) Snapshot() types.VehicleSnapshot {
	snap := m.state.snapshot()
	snap.Model = Name
	return snap
}

func (m *Model) now() int64 {
	if m.clock != nil {
		return m.clock()
	}
	return m.lastNow
}
