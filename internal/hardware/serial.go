package hardware

import (
	"fmt"

	"vehicle-emulator/internal/logger"

	"go.bug.st/serial"
)

// OpenSerialPort opens the operator console port 8N1. Reads time out after
// serialReadDelay and return no data, so line readers can observe shutdown.
func OpenSerialPort(path string, baud int, l *logger.Logger) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultSerialBaud
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(serialReadDelay); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", path, err)
	}
	l.Infof("Opened serial console %s at %d baud", path, baud)
	return port, nil
}
