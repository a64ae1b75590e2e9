package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockFree(t *testing.T) {
	assert := assert.New(t)

	t.Run("Empty Queue", func(t *testing.T) {
		q := NewLockFree[[]byte]()

		assert.True(q.IsEmpty())
		assert.Equal(0, q.Length())

		_, ok := q.Dequeue()
		assert.False(ok)
		_, ok = q.Peek()
		assert.False(ok)
	})

	t.Run("Enqueue and Dequeue", func(t *testing.T) {
		q := NewLockFree[[]byte]()

		q.Enqueue([]byte("\r\nOK"))
		q.Enqueue([]byte("\r\n"))
		assert.Equal(2, q.Length())

		chunk, ok := q.Dequeue()
		assert.True(ok)
		assert.Equal([]byte("\r\nOK"), chunk)

		chunk, ok = q.Dequeue()
		assert.True(ok)
		assert.Equal([]byte("\r\n"), chunk)
		assert.True(q.IsEmpty())

		_, ok = q.Dequeue()
		assert.False(ok)
	})

	t.Run("Peek", func(t *testing.T) {
		q := NewLockFree[string]()
		q.Enqueue("+CPIN: READY")
		q.Enqueue("OK")

		v, ok := q.Peek()
		assert.True(ok)
		assert.Equal("+CPIN: READY", v)
		assert.Equal(2, q.Length())

		_, _ = q.Dequeue()
		v, _ = q.Peek()
		assert.Equal("OK", v)

		_, _ = q.Dequeue()
		_, ok = q.Peek()
		assert.False(ok)
	})

	t.Run("Concurrency", func(t *testing.T) {
		q := NewLockFree[int]()

		var wg sync.WaitGroup
		for i := 0; i < 1000; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				q.Enqueue(i)
			}(i)
		}
		wg.Wait()
		assert.Equal(1000, q.Length())

		var sum atomic.Int64
		wg.Add(1000)
		for i := 0; i < 1000; i++ {
			go func() {
				defer wg.Done()
				if v, ok := q.Dequeue(); ok {
					sum.Add(int64(v))
				}
			}()
		}
		wg.Wait()

		assert.True(q.IsEmpty())
		assert.Equal(int64(999*1000/2), sum.Load())
	})

	t.Run("Single producer order", func(t *testing.T) {
		q := NewLockFree[int]()
		done := make(chan struct{})

		go func() {
			defer close(done)
			for i := 0; i < 500; i++ {
				q.Enqueue(i)
			}
		}()

		next := 0
		for next < 500 {
			if v, ok := q.Dequeue(); ok {
				assert.Equal(next, v)
				next++
			}
		}
		<-done
	})
}

func BenchmarkLockFree_100(b *testing.B) {
	ctx := context.Background()
	q := NewLockFree[int]()
	const iterCount = 100

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stopCh := make(chan struct{})
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				default:
					if v, ok := q.Dequeue(); ok && v == iterCount {
						close(stopCh)
						return
					}
				}
			}
		}()

		for j := 0; j < iterCount; j++ {
			q.Enqueue(j + 1)
		}
		<-stopCh
	}
}

func BenchmarkChannelBuffered_100(b *testing.B) {
	const iterCount = 100
	input := make(chan int, iterCount)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stopCh := make(chan struct{})
		go func() {
			for v := range input {
				if v == iterCount {
					close(stopCh)
					return
				}
			}
		}()

		for j := 0; j < iterCount; j++ {
			input <- j + 1
		}
		<-stopCh
	}
}
