package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-atcmd/internal/pool"
	"github.com/arloliu/go-atcmd/internal/queue"
	"github.com/arloliu/go-atcmd/internal/task"
	"github.com/arloliu/go-atcmd/logger"
)

// Stream adapts a blocking io.ReadWriteCloser to the Transport contract.
//
// A reader goroutine copies incoming data into pooled chunks and pushes them
// onto a lock-free queue. Available and ReadByte only look at the queue, so
// they never block. ReadByte must be called from a single goroutine.
type Stream struct {
	rwc    io.ReadWriteCloser
	logger logger.Logger
	tasks  *task.Manager

	chunks    *queue.LockFree[*[]byte]
	available atomic.Int64
	readErr   atomic.Pointer[error]

	// consumer side, owned by the ReadByte caller
	cur *[]byte
	pos int

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ Closer = (*Stream)(nil)

// StreamOption configures a Stream.
type StreamOption interface {
	apply(*Stream) error
}

type streamOptFunc func(*Stream) error

func (f streamOptFunc) apply(s *Stream) error { return f(s) }

// WithStreamLogger sets the logger used by the reader goroutine.
func WithStreamLogger(l logger.Logger) StreamOption {
	return streamOptFunc(func(s *Stream) error {
		if l == nil {
			return errors.New("transport: logger must not be nil")
		}
		s.logger = l

		return nil
	})
}

// NewStream wraps rwc and starts its reader goroutine. The goroutine stops
// when ctx is done or Close is called.
func NewStream(ctx context.Context, rwc io.ReadWriteCloser, opts ...StreamOption) (*Stream, error) {
	if rwc == nil {
		return nil, errors.New("transport: nil stream")
	}

	s := &Stream{
		rwc:    rwc,
		logger: logger.GetLogger(),
		chunks: queue.NewLockFree[*[]byte](),
	}
	for _, opt := range opts {
		if err := opt.apply(s); err != nil {
			return nil, err
		}
	}

	s.tasks = task.NewManager(ctx, s.logger)
	if err := s.tasks.Start("stream-reader", s.readOnce); err != nil {
		return nil, fmt.Errorf("transport: start reader: %w", err)
	}

	return s, nil
}

// Available implements Transport.
func (s *Stream) Available() int {
	return int(s.available.Load())
}

// ReadByte implements Transport. After the peer closed the stream and every
// queued byte was consumed it returns the read error.
func (s *Stream) ReadByte() (byte, error) {
	for s.cur == nil || s.pos >= len(*s.cur) {
		if s.cur != nil {
			pool.PutChunk(s.cur)
			s.cur = nil
		}

		next, ok := s.chunks.Dequeue()
		if !ok {
			if errp := s.readErr.Load(); errp != nil {
				return 0, *errp
			}
			return 0, ErrNoData
		}
		s.cur, s.pos = next, 0
	}

	b := (*s.cur)[s.pos]
	s.pos++
	s.available.Add(-1)

	return b, nil
}

// Write implements Transport. A short write without an error from the
// underlying stream is reported as ErrShortWrite.
func (s *Stream) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	n, err := s.rwc.Write(p)
	if err == nil && n < len(p) {
		err = ErrShortWrite
	}

	return n, err
}

// Close closes the underlying stream and waits for the reader to exit.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		closed := ErrClosed
		s.readErr.CompareAndSwap(nil, &closed)

		s.tasks.Stop()
		s.closeErr = s.rwc.Close()
		s.tasks.Wait()
	})

	return s.closeErr
}

func (s *Stream) readOnce() bool {
	buf := pool.GetChunk()

	n, err := s.rwc.Read(*buf)
	if n > 0 {
		*buf = (*buf)[:n]
		s.chunks.Enqueue(buf)
		s.available.Add(int64(n))
		s.logger.Debug("stream read", "len", n)
	} else {
		pool.PutChunk(buf)
	}

	if err != nil {
		if s.readErr.CompareAndSwap(nil, &err) && !errors.Is(err, io.EOF) {
			s.logger.Warn("stream read failed", "error", err)
		}
		return false
	}

	return true
}
