package core

import (
	"vehicle-emulator/internal/messaging"
	"vehicle-emulator/internal/types"
)

// MessagingClient defines the interface for Redis messaging operations needed by Emulator
type MessagingClient interface {
	SetCallbacks(callbacks messaging.Callbacks)
	Connect() error
	StartListening() error
	Close() error

	// State publishing
	PublishVehicleState(snap types.VehicleSnapshot) error
}
