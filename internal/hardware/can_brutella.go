package hardware

import (
	"fmt"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"

	"github.com/brutella/can"
)

type framePublisher interface {
	Publish(frame can.Frame) error
	Disconnect() error
}

// BrutellaTransport writes frames to a SocketCAN interface through
// github.com/brutella/can.
type BrutellaTransport struct {
	bus    framePublisher
	iface  string
	logger *logger.Logger
}

func NewBrutellaTransport(iface string, l *logger.Logger) (*BrutellaTransport, error) {
	bus, err := can.NewBusForInterfaceWithName(iface)
	if err != nil {
		return nil, fmt.Errorf("failed to open CAN interface %s: %w", iface, err)
	}
	l.Infof("Opened CAN interface %s (brutella)", iface)

	// Keeps the receive side drained; frames from other nodes are ignored.
	go func() {
		if err := bus.ConnectAndPublish(); err != nil {
			l.Warnf("CAN receive loop on %s stopped: %v", iface, err)
		}
	}()

	return &BrutellaTransport{bus: bus, iface: iface, logger: l}, nil
}

func (t *BrutellaTransport) Send(id uint32, data model.Payload) error {
	return t.bus.Publish(can.Frame{
		ID:     id,
		Length: model.PayloadSize,
		Data:   [8]uint8(data),
	})
}

func (t *BrutellaTransport) Close() error {
	t.logger.Infof("Closing CAN interface %s", t.iface)
	return t.bus.Disconnect()
}
