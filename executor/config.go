package executor

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-atcmd/clock"
	"github.com/arloliu/go-atcmd/logger"
)

const (
	DefaultTimeout    = 500 * time.Millisecond
	DefaultBufferSize = 64

	MaxTimeout    = 10 * time.Minute
	MaxBufferSize = 64 * 1024
)

type config struct {
	timeout    time.Duration
	bufferSize int
	clock      clock.Clock
	logger     logger.Logger
}

// Option configures an Executor.
type Option interface {
	apply(*config) error
}

type optFunc func(*config) error

func (f optFunc) apply(cfg *config) error { return f(cfg) }

// WithTimeout sets how long a command may stay in flight.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(cfg *config) error {
		if d < 0 || d > MaxTimeout {
			return fmt.Errorf("executor: timeout %v out of range [0, %v]", d, MaxTimeout)
		}
		cfg.timeout = d

		return nil
	})
}

// WithBufferSize sets the receive buffer capacity.
func WithBufferSize(n int) Option {
	return optFunc(func(cfg *config) error {
		if n < 1 || n > MaxBufferSize {
			return fmt.Errorf("executor: buffer size %d out of range [1, %d]", n, MaxBufferSize)
		}
		cfg.bufferSize = n

		return nil
	})
}

// WithClock sets the millisecond clock.
func WithClock(c clock.Clock) Option {
	return optFunc(func(cfg *config) error {
		if c == nil {
			return errors.New("executor: clock must not be nil")
		}
		cfg.clock = c

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *config) error {
		if l == nil {
			return errors.New("executor: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
