// Package transport provides the byte streams the AT command engine reads
// from and writes to.
//
// The engine only ever polls: it asks how many bytes are [Transport.Available]
// and reads exactly that many with [Transport.ReadByte], so no call may block.
// [Stream] turns any blocking io.ReadWriteCloser (a serial port, a TCP
// connection) into a Transport by moving the blocking reads to a background
// goroutine. [Memory] is a scripted in-process Transport for tests and
// scenario replays.
package transport

import "errors"

var (
	// ErrNoData is returned by ReadByte when no byte is available.
	ErrNoData = errors.New("transport: no data available")

	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport: closed")

	// ErrShortWrite is reported when a transport accepted fewer bytes
	// than requested without giving a reason.
	ErrShortWrite = errors.New("transport: short write")
)

// Transport is a non-blocking, byte-oriented duplex stream.
type Transport interface {
	// Available returns how many bytes can be read right now without blocking.
	Available() int
	// ReadByte returns the next received byte, or ErrNoData when none is
	// available.
	ReadByte() (byte, error)
	// Write sends p and returns how many bytes were accepted.
	Write(p []byte) (int, error)
}

// Closer is implemented by transports that own an underlying resource.
type Closer interface {
	Transport
	Close() error
}
