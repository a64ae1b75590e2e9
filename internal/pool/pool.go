// Package pool holds the sync.Pool wrappers shared by the transport and
// session layers.
package pool

import (
	"sync"
	"time"
)

// ChunkSize is the size of the read buffers handed out by GetChunk.
const ChunkSize = 256

var (
	timerPool sync.Pool
	chunkPool = sync.Pool{
		New: func() any {
			b := make([]byte, ChunkSize)
			return &b
		},
	}
)

// GetTimer returns a timer that fires after d.
//
// Return the timer with PutTimer once it is no longer used.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		t.Reset(d)

		return t
	}

	return time.NewTimer(d)
}

// PutTimer stops t and returns it to the pool.
//
// t must not be used after it was put back.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}

// GetChunk returns a byte slice of length ChunkSize.
func GetChunk() *[]byte {
	b, _ := chunkPool.Get().(*[]byte)
	*b = (*b)[:ChunkSize]

	return b
}

// PutChunk returns b to the pool. Slices with a foreign capacity are dropped.
func PutChunk(b *[]byte) {
	if b == nil || cap(*b) != ChunkSize {
		return
	}
	chunkPool.Put(b)
}
