package transport

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultBaudRate is the factory default rate of most GPRS modules.
const DefaultBaudRate = 115200

// DefaultSerialReadTimeout bounds each blocking read of the reader goroutine
// so that Close is never stuck behind a silent port.
const DefaultSerialReadTimeout = 100 * time.Millisecond

// SerialDialer opens a serial port as a Stream.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyUSB0 or COM3.
	PortName string
	// Mode is the line configuration. nil means 8N1 at DefaultBaudRate.
	Mode *serial.Mode
	// ReadTimeout overrides DefaultSerialReadTimeout when positive.
	ReadTimeout time.Duration
	// Options are passed to NewStream.
	Options []StreamOption
}

// DefaultMode returns 8N1 at baud.
func DefaultMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Dial opens the port.
func (d SerialDialer) Dial(ctx context.Context) (*Stream, error) {
	mode := d.Mode
	if mode == nil {
		mode = DefaultMode(DefaultBaudRate)
	}

	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("transport: open port %s: %w", d.PortName, err)
	}

	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultSerialReadTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("transport: set read timeout: %w", err)
	}

	s, err := NewStream(ctx, port, d.Options...)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	return s, nil
}

// ListPorts returns the names of the serial ports present on the system.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("transport: list ports: %w", err)
	}

	return ports, nil
}
