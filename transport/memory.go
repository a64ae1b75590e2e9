package transport

import (
	"sync"
)

// Responder produces the bytes a simulated modem sends back after a write.
type Responder func(written []byte) []byte

// Memory is an in-process Transport.
//
// Bytes given to Feed become readable in order. Everything written is
// captured and can be inspected with Written or TakeWritten. It is safe for
// concurrent use, so a test goroutine may feed a session's transport while
// the session loop polls it.
type Memory struct {
	mu         sync.Mutex
	rx         []byte
	tx         []byte
	writeLimit int
	writeErr   error
	responder  Responder
	closed     bool
}

var _ Closer = (*Memory)(nil)

// NewMemory returns an empty Memory transport with unlimited writes.
func NewMemory() *Memory {
	return &Memory{writeLimit: -1}
}

// Feed queues s for reading.
func (m *Memory) Feed(s string) {
	m.FeedBytes([]byte(s))
}

// FeedBytes queues p for reading.
func (m *Memory) FeedBytes(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rx = append(m.rx, p...)
}

// SetWriteLimit caps the number of bytes a single Write accepts.
// A negative limit removes the cap.
func (m *Memory) SetWriteLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeLimit = n
}

// SetWriteError makes every following Write fail with err. nil clears it.
func (m *Memory) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.writeErr = err
}

// SetResponder installs r, which is called after every complete write; its
// result is queued for reading.
func (m *Memory) SetResponder(r Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responder = r
}

// Available implements Transport.
func (m *Memory) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rx)
}

// ReadByte implements Transport.
func (m *Memory) ReadByte() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rx) == 0 {
		if m.closed {
			return 0, ErrClosed
		}
		return 0, ErrNoData
	}
	b := m.rx[0]
	m.rx = m.rx[1:]

	return b, nil
}

// Write implements Transport.
func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}

	n := len(p)
	if m.writeLimit >= 0 && n > m.writeLimit {
		n = m.writeLimit
	}
	m.tx = append(m.tx, p[:n]...)

	if n == len(p) && m.responder != nil {
		m.rx = append(m.rx, m.responder(p)...)
	}

	return n, nil
}

// Written returns a copy of everything written so far.
func (m *Memory) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.tx...)
}

// TakeWritten returns everything written so far and forgets it.
func (m *Memory) TakeWritten() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.tx
	m.tx = nil

	return out
}

// Close makes further writes fail. Queued bytes stay readable.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}
