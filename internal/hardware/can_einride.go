package hardware

import (
	"context"
	"fmt"
	"io"
	"time"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"

	einride "go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

type frameTransmitter interface {
	TransmitFrame(ctx context.Context, frame einride.Frame) error
}

// EinrideTransport writes frames through go.einride.tech/can. Every frame
// gets its own short deadline so a full TX queue cannot stall the tick loop.
type EinrideTransport struct {
	conn    io.Closer
	tx      frameTransmitter
	timeout time.Duration
	iface   string
	logger  *logger.Logger
}

func NewEinrideTransport(ctx context.Context, iface string, l *logger.Logger) (*EinrideTransport, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("failed to dial CAN interface %s: %w", iface, err)
	}
	l.Infof("Opened CAN interface %s (einride)", iface)

	return &EinrideTransport{
		conn:    conn,
		tx:      socketcan.NewTransmitter(conn),
		timeout: canSendTimeout,
		iface:   iface,
		logger:  l,
	}, nil
}

func (t *EinrideTransport) Send(id uint32, data model.Payload) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	return t.tx.TransmitFrame(ctx, einride.Frame{
		ID:     id,
		Length: model.PayloadSize,
		Data:   einride.Data(data),
	})
}

func (t *EinrideTransport) Close() error {
	t.logger.Infof("Closing CAN interface %s", t.iface)
	return t.conn.Close()
}
