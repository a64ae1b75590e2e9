package ringbuf

import "errors"

var (
	// ErrEmpty is returned when an element is removed from an empty buffer.
	ErrEmpty = errors.New("ringbuf: buffer is empty")

	// ErrIndexOutOfRange is returned by At for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("ringbuf: index out of range")

	// ErrFull is returned by Line.Write when not every byte could be appended.
	ErrFull = errors.New("ringbuf: buffer is full")
)

// Ring is a fixed-capacity circular buffer of T.
//
// start and length are the source of truth; the write position is always
// derived as (start+length) % Cap() so the two can never drift apart.
type Ring[T any] struct {
	buf    []T
	start  int
	length int
}

// New creates an empty Ring holding at most capacity elements.
//
// It panics if capacity is less than 1.
func New[T any](capacity int) *Ring[T] {
	r := &Ring[T]{}
	r.init(capacity)

	return r
}

func (r *Ring[T]) init(capacity int) {
	if capacity < 1 {
		panic("ringbuf: capacity must be positive")
	}
	r.buf = make([]T, capacity)
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Len returns the number of valid elements.
func (r *Ring[T]) Len() int { return r.length }

// Full reports whether Len() == Cap().
func (r *Ring[T]) Full() bool { return r.length == len(r.buf) }

// Empty reports whether Len() == 0.
func (r *Ring[T]) Empty() bool { return r.length == 0 }

// Clear resets the buffer to empty. The backing memory is not zeroed.
func (r *Ring[T]) Clear() {
	r.start = 0
	r.length = 0
}

// Append writes v after the last element. It returns false, without
// modifying the buffer, when the buffer is full.
func (r *Ring[T]) Append(v T) bool {
	if r.Full() {
		return false
	}
	r.buf[r.physical(r.length)] = v
	r.length++

	return true
}

// PopFirst removes and returns the oldest element.
func (r *Ring[T]) PopFirst() (T, error) {
	var zero T
	if r.Empty() {
		return zero, ErrEmpty
	}

	v := r.buf[r.start]
	r.start = r.physical(1)
	r.length--

	return v, nil
}

// PopFirsts removes up to n of the oldest elements and returns how many were
// removed.
func (r *Ring[T]) PopFirsts(n int) int {
	if n <= 0 {
		return 0
	}
	if n > r.length {
		n = r.length
	}

	r.start = r.physical(n)
	r.length -= n

	return n
}

// Cut removes the elements in the logical range [from, to) and returns how
// many were removed. Elements before from move forward to close the gap, so
// the order of the remaining elements is unchanged. The range is clamped to
// the buffer content.
func (r *Ring[T]) Cut(from, to int) int {
	from = max(from, 0)
	to = min(to, r.length)
	n := to - from
	if n <= 0 {
		return 0
	}

	for i := from - 1; i >= 0; i-- {
		r.buf[r.physical(i+n)] = r.buf[r.physical(i)]
	}
	r.start = r.physical(n)
	r.length -= n

	return n
}

// PopLast removes and returns the newest element.
func (r *Ring[T]) PopLast() (T, error) {
	var zero T
	if r.Empty() {
		return zero, ErrEmpty
	}

	r.length--

	return r.buf[r.physical(r.length)], nil
}

// At returns the element at logical index i, where 0 is the oldest element.
func (r *Ring[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= r.length {
		return zero, ErrIndexOutOfRange
	}

	return r.at(i), nil
}

// AppendTo appends the logical content to dst and returns the extended slice.
// Unlike Contiguous it never rearranges the backing array.
func (r *Ring[T]) AppendTo(dst []T) []T {
	if r.contiguous() {
		return append(dst, r.buf[r.start:r.start+r.length]...)
	}

	dst = append(dst, r.buf[r.start:]...)

	return append(dst, r.buf[:r.physical(r.length)]...)
}

// Contiguous returns the logical content as a single slice aliasing the
// backing array.
//
// If the content currently wraps past the physical end, the backing array is
// rotated in place first so that the oldest element sits at index 0. The cost
// is O(Cap()) when a rotation happens and O(1) otherwise. The returned slice
// must be treated as read-only and is only valid until the next mutation.
func (r *Ring[T]) Contiguous() []T {
	if r.length == 0 {
		r.start = 0
		return r.buf[:0]
	}
	if !r.contiguous() {
		r.linearize()
	}

	return r.buf[r.start : r.start+r.length]
}

func (r *Ring[T]) contiguous() bool {
	return r.start+r.length <= len(r.buf)
}

// linearize left-rotates the backing array by start using three reversals,
// which needs no scratch memory.
func (r *Ring[T]) linearize() {
	reverse(r.buf[:r.start])
	reverse(r.buf[r.start:])
	reverse(r.buf)
	r.start = 0
}

func (r *Ring[T]) at(i int) T {
	return r.buf[r.physical(i)]
}

// physical maps the logical offset i (0 <= i <= Cap()) to an array index.
func (r *Ring[T]) physical(i int) int {
	idx := r.start + i
	if idx >= len(r.buf) {
		idx -= len(r.buf)
	}

	return idx
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
