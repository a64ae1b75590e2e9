// Package executor provides the tick-driven driver that feeds a transport
// into a receive buffer and reports what happened through four callbacks.
//
// It is the lower-level sibling of atcmd.Engine: the executor knows nothing
// about AT syntax. Deciding when a command has completed, and what counts as
// an event, is left to the Callbacks.
package executor

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-atcmd/clock"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/ringbuf"
	"github.com/arloliu/go-atcmd/transport"
)

var (
	// ErrAlreadyRunning is returned by Exec while a command is in flight.
	ErrAlreadyRunning = errors.New("executor: command already running")
	// ErrWriting is returned by Exec when the transport did not accept the
	// whole command.
	ErrWriting = errors.New("executor: transport write failed")
)

// Executor drives one transport. It is not safe for concurrent use; Tick and
// Exec must be called from the same goroutine.
type Executor struct {
	transport transport.Transport
	callbacks Callbacks
	buf       *ringbuf.Line
	cfg       config
	metrics   Metrics

	executing bool
	execStart uint32
}

// New creates an Executor reading from t and reporting to cb.
func New(t transport.Transport, cb Callbacks, opts ...Option) (*Executor, error) {
	if t == nil {
		return nil, errors.New("executor: transport must not be nil")
	}
	if cb == nil {
		return nil, errors.New("executor: callbacks must not be nil")
	}

	cfg := config{
		timeout:    DefaultTimeout,
		bufferSize: DefaultBufferSize,
		logger:     logger.GetLogger(),
	}
	for _, opt := range opts {
		if err := opt.apply(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = clock.NewSystem()
	}

	return &Executor{
		transport: t,
		callbacks: cb,
		buf:       ringbuf.NewLine(cfg.bufferSize),
		cfg:       cfg,
	}, nil
}

// Buffer returns the receive buffer.
func (x *Executor) Buffer() *ringbuf.Line { return x.buf }

// IsExecuting reports whether a command is in flight.
func (x *Executor) IsExecuting() bool { return x.executing }

// Metrics returns the executor counters.
func (x *Executor) Metrics() *Metrics { return &x.metrics }

// Tick advances the executor by one step:
//
//  1. move available bytes into the buffer while it has room;
//  2. with a command in flight, ask Executing whether it still is;
//  3. if it still is and the timeout was exceeded, call OnTimeout and end it;
//  4. if it still is and the buffer is full, call OnBufferOverflow and drop
//     the oldest byte if that did not make room;
//  5. with no command in flight and a non-empty buffer, call OnEvent.
func (x *Executor) Tick() {
	x.metrics.TickCount.Add(1)
	x.drain()

	if x.executing {
		x.executing = x.callbacks.Executing(x.buf)
	}

	if x.executing && clock.Exceeded(x.cfg.clock.Millis(), x.execStart, x.cfg.timeout) {
		x.metrics.TimeoutCount.Add(1)
		x.cfg.logger.Warn("command timed out", "timeout", x.cfg.timeout, "buffered", x.buf.Len())
		x.callbacks.OnTimeout(x.buf)
		x.executing = false
	}

	if x.executing && x.buf.Full() {
		x.metrics.OverflowCount.Add(1)
		x.callbacks.OnBufferOverflow(x.buf)
		if x.buf.Full() {
			_, _ = x.buf.PopFirst()
			x.metrics.EvictedBytes.Add(1)
		}
	}

	if !x.executing && !x.buf.Empty() {
		x.metrics.EventCount.Add(1)
		x.callbacks.OnEvent(x.buf)
	}
}

// Exec sends cmd. Bytes left over from the idle period are handed to
// OnEvent first, then the buffer is cleared.
func (x *Executor) Exec(cmd []byte) error {
	if x.executing {
		return ErrAlreadyRunning
	}

	if !x.buf.Empty() {
		x.metrics.EventCount.Add(1)
		x.callbacks.OnEvent(x.buf)
	}
	x.buf.Clear()

	n, err := x.transport.Write(cmd)
	if err != nil {
		x.metrics.WriteErrCount.Add(1)
		return fmt.Errorf("%w: %w", ErrWriting, err)
	}
	if n != len(cmd) {
		x.metrics.WriteErrCount.Add(1)
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriting, n, len(cmd))
	}

	x.executing = true
	x.execStart = x.cfg.clock.Millis()
	x.metrics.CommandCount.Add(1)

	return nil
}

// Abort ends the command in flight without calling any callback.
func (x *Executor) Abort() {
	x.executing = false
}

func (x *Executor) drain() {
	n := 0
	for x.transport.Available() > 0 && !x.buf.Full() {
		b, err := x.transport.ReadByte()
		if err != nil {
			break
		}
		x.buf.Append(b)
		n++
	}
	if n > 0 {
		x.metrics.RecvBytes.Add(uint64(n))
	}
}
