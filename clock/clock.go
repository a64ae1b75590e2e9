// Package clock provides the wrapping millisecond counter used by the AT
// command runtime to enforce command timeouts.
//
// The counter is a uint32 that overflows roughly every 49.7 days, the same
// way a microcontroller millis() counter does. Elapsed time must always be
// computed with [Elapsed], which relies on modular uint32 subtraction and
// therefore stays correct across an overflow boundary.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter.
type Clock interface {
	// Millis returns the current counter value. It wraps at 2^32.
	Millis() uint32
}

// Elapsed returns the number of milliseconds between start and now.
//
// The result is correct as long as the real elapsed time is below 2^32 ms,
// even if the counter overflowed in between.
func Elapsed(now, start uint32) uint32 {
	return now - start
}

// Exceeded reports whether more than d has elapsed since start.
func Exceeded(now, start uint32, d time.Duration) bool {
	return Elapsed(now, start) > ToMillis(d)
}

// Reached reports whether at least d has elapsed since start.
func Reached(now, start uint32, d time.Duration) bool {
	return Elapsed(now, start) >= ToMillis(d)
}

// ToMillis converts d to a counter delta, saturating at the counter range.
func ToMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	switch {
	case ms <= 0:
		return 0
	case ms > int64(^uint32(0)):
		return ^uint32(0)
	default:
		return uint32(ms)
	}
}

// System is a Clock backed by the Go monotonic clock.
type System struct {
	epoch time.Time
}

var _ Clock = (*System)(nil)

// NewSystem returns a System clock whose counter starts at zero now.
func NewSystem() *System {
	return &System{epoch: time.Now()}
}

// Millis implements Clock.
func (c *System) Millis() uint32 {
	return uint32(time.Since(c.epoch).Milliseconds()) //nolint:gosec // wrapping is intended
}

// Manual is a Clock driven explicitly by tests and scenario replays.
//
// It is safe for concurrent use.
type Manual struct {
	now atomic.Uint32
}

var _ Clock = (*Manual)(nil)

// NewManual returns a Manual clock set to start.
func NewManual(start uint32) *Manual {
	c := &Manual{}
	c.now.Store(start)

	return c
}

// Millis implements Clock.
func (c *Manual) Millis() uint32 {
	return c.now.Load()
}

// Set sets the counter to ms.
func (c *Manual) Set(ms uint32) {
	c.now.Store(ms)
}

// Advance moves the counter forward by d, wrapping like a hardware counter.
func (c *Manual) Advance(d time.Duration) {
	c.now.Add(ToMillis(d))
}
