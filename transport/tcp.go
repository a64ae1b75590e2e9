package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultDialTimeout is used by TCPDialer when Timeout is zero.
const DefaultDialTimeout = 3 * time.Second

// TCPDialer connects to a modem exposed over TCP, such as a ser2net bridge
// or a modem emulator.
type TCPDialer struct {
	Addr    string
	Timeout time.Duration
	Options []StreamOption
}

// Dial connects to Addr.
func (d TCPDialer) Dial(ctx context.Context) (*Stream, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", d.Addr, err)
	}

	s, err := NewStream(ctx, conn, d.Options...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}
