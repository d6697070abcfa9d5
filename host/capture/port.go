package capture

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// Port is the byte stream a capture reads from.
type Port interface {
	io.ReadWriteCloser

	// Flush discards buffered data.
	Flush() error
}

// PortConfig holds serial port configuration.
type PortConfig struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string
	// Baud is ignored by USB CDC links.
	Baud int
	// ReadTimeout in milliseconds, 0 blocks.
	ReadTimeout int
}

// OpenPort opens a native serial port.
func OpenPort(cfg *PortConfig) (Port, error) {
	if cfg == nil {
		return nil, errors.New("capture: nil port config")
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Device, err)
	}
	return p, nil
}
