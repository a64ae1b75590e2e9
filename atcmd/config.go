package atcmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-atcmd/clock"
	"github.com/arloliu/go-atcmd/logger"
)

const (
	DefaultTimeout          = 500 * time.Millisecond
	DefaultBufferSize       = 256
	DefaultMaxCommandLength = 255
)

// Range limits of the options.
const (
	MinBufferSize = 16
	MaxBufferSize = 64 * 1024

	MaxTimeout = 10 * time.Minute
)

// Config holds the construction-time settings of an Engine.
type Config struct {
	timeout          time.Duration
	bufferSize       int
	maxCommandLength int
	events           []EventSpec
	clock            clock.Clock
	logger           logger.Logger
}

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		timeout:          DefaultTimeout,
		bufferSize:       DefaultBufferSize,
		maxCommandLength: DefaultMaxCommandLength,
		events:           DefaultEvents(),
		logger:           logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = clock.NewSystem()
	}

	return cfg, nil
}

// Timeout returns the timeout used by Engine.Poll.
func (cfg *Config) Timeout() time.Duration { return cfg.timeout }

// BufferSize returns the receive buffer capacity in bytes.
func (cfg *Config) BufferSize() int { return cfg.bufferSize }

// MaxCommandLength returns the longest command Exec accepts.
func (cfg *Config) MaxCommandLength() int { return cfg.maxCommandLength }

// Events returns a copy of the event table.
func (cfg *Config) Events() []EventSpec { return append([]EventSpec(nil), cfg.events...) }

// Clock returns the configured clock.
func (cfg *Config) Clock() clock.Clock { return cfg.clock }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option configures an Engine.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithTimeout sets the command timeout used by Poll. Zero is allowed and
// makes every command time out on its first poll.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < 0 || d > MaxTimeout {
			return fmt.Errorf("atcmd: timeout %v out of range [0, %v]", d, MaxTimeout)
		}
		cfg.timeout = d

		return nil
	})
}

// WithBufferSize sets the receive buffer capacity.
func WithBufferSize(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < MinBufferSize || n > MaxBufferSize {
			return fmt.Errorf("atcmd: buffer size %d out of range [%d, %d]", n, MinBufferSize, MaxBufferSize)
		}
		cfg.bufferSize = n

		return nil
	})
}

// WithMaxCommandLength sets the longest command Exec accepts.
func WithMaxCommandLength(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 1 {
			return errors.New("atcmd: max command length must be positive")
		}
		cfg.maxCommandLength = n

		return nil
	})
}

// WithEvents replaces the event table. Order is priority order.
func WithEvents(events ...EventSpec) Option {
	return optFunc(func(cfg *Config) error {
		if err := validateEvents(events); err != nil {
			return err
		}
		cfg.events = append([]EventSpec(nil), events...)

		return nil
	})
}

// WithClock sets the millisecond clock.
func WithClock(c clock.Clock) Option {
	return optFunc(func(cfg *Config) error {
		if c == nil {
			return errors.New("atcmd: clock must not be nil")
		}
		cfg.clock = c

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("atcmd: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
