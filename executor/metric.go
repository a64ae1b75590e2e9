package executor

import "sync/atomic"

// Metrics contains atomic counters for an Executor.
type Metrics struct {
	TickCount     atomic.Uint64
	CommandCount  atomic.Uint64
	// WriteErrCount indicates the commands rejected by a failed or short
	// write.
	WriteErrCount atomic.Uint64
	TimeoutCount  atomic.Uint64
	OverflowCount atomic.Uint64
	EventCount    atomic.Uint64
	// EvictedBytes indicates the bytes dropped after an overflow callback
	// left the buffer full.
	EvictedBytes atomic.Uint64
	RecvBytes    atomic.Uint64
}
