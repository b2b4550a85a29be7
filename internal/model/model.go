// Package model defines the contract between the emulator loop and a
// simulated vehicle, plus the collaborators a vehicle model consumes.
package model

import (
	"errors"

	"vehicle-emulator/internal/types"
)

// PayloadSize is the classical CAN data length every emitted frame uses.
const PayloadSize = 8

// Payload is one CAN data field.
type Payload [PayloadSize]byte

var (
	ErrUnknownModel = errors.New("unknown vehicle model")
	ErrUnsupported  = errors.New("command not supported by this model")
)

// Transport sends a single frame. A non-nil error means the frame was not
// put on the bus; callers treat it as transient.
type Transport interface {
	Send(id uint32, data Payload) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(id uint32, data Payload) error

func (f TransportFunc) Send(id uint32, data Payload) error {
	return f(id, data)
}

// Clock returns monotonic milliseconds.
type Clock func() int64

// Model is a simulated vehicle. Init, Tick and HandleCommand are driven from
// a single goroutine and are not safe for concurrent use.
type Model interface {
	Name() string
	// Init wires the transport and prepares derived state.
	Init(t Transport)
	// Tick emits every frame whose interval has elapsed at now.
	Tick(now int64)
	// HandleCommand applies a tokenized operator command.
	HandleCommand(tokens []string) error
}

// Snapshotter is implemented by models whose state can be published.
type Snapshotter interface {
	Snapshot() types.VehicleSnapshot
}
