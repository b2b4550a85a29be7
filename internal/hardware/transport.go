package hardware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/model"
)

const (
	DriverBrutella = "brutella"
	DriverEinride  = "einride"
	DriverNone     = "none"
)

var ErrUnknownDriver = errors.New("unknown CAN driver")

// CANTransport is a model.Transport backed by an OS resource.
type CANTransport interface {
	model.Transport
	Close() error
}

// OpenCAN opens the named driver on iface. The "none" driver only logs
// frames at debug level, for running without a CAN interface.
func OpenCAN(ctx context.Context, driver, iface string, l *logger.Logger) (CANTransport, error) {
	switch strings.ToLower(driver) {
	case "", DriverBrutella:
		return NewBrutellaTransport(iface, l)
	case DriverEinride:
		return NewEinrideTransport(ctx, iface, l)
	case DriverNone:
		l.Infof("CAN output disabled; frames are only logged")
		return &LogTransport{logger: l}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

type LogTransport struct {
	logger *logger.Logger
}

func (t *LogTransport) Send(id uint32, data model.Payload) error {
	t.logger.Debugf("TX 0x%03X [%d] % X", id, model.PayloadSize, data[:])
	return nil
}

func (t *LogTransport) Close() error { return nil }
