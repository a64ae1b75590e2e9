package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-atcmd/atcmd"
	"github.com/arloliu/go-atcmd/logger"
)

const (
	DefaultPollInterval  = 10 * time.Millisecond
	DefaultQueueSize     = 8
	DefaultSubmitTimeout = 3 * time.Second

	MinPollInterval = time.Millisecond
	MaxPollInterval = time.Second
)

type config struct {
	pollInterval  time.Duration
	queueSize     int
	submitTimeout time.Duration
	logger        logger.Logger
	engineOpts    []atcmd.Option
}

// Option configures a Session.
type Option interface {
	apply(*config) error
}

type optFunc func(*config) error

func (f optFunc) apply(cfg *config) error { return f(cfg) }

// WithPollInterval sets how often the session loop polls the engine.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *config) error {
		if d < MinPollInterval || d > MaxPollInterval {
			return fmt.Errorf("session: poll interval %v out of range [%v, %v]", d, MinPollInterval, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithQueueSize sets how many Exec calls may wait for the loop.
func WithQueueSize(n int) Option {
	return optFunc(func(cfg *config) error {
		if n < 1 {
			return errors.New("session: queue size must be positive")
		}
		cfg.queueSize = n

		return nil
	})
}

// WithSubmitTimeout bounds how long Exec waits for a free queue slot.
func WithSubmitTimeout(d time.Duration) Option {
	return optFunc(func(cfg *config) error {
		if d <= 0 {
			return errors.New("session: submit timeout must be positive")
		}
		cfg.submitTimeout = d

		return nil
	})
}

// WithLogger sets the logger. The session adds its ID to every record.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *config) error {
		if l == nil {
			return errors.New("session: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithEngineOptions passes options to the underlying atcmd.Engine.
func WithEngineOptions(opts ...atcmd.Option) Option {
	return optFunc(func(cfg *config) error {
		cfg.engineOpts = append(cfg.engineOpts, opts...)
		return nil
	})
}
