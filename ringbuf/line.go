package ringbuf

import "strings"

// Line is a byte ring with token search and text helpers.
//
// All matching is literal and case-sensitive.
type Line struct {
	Ring[byte]
}

// NewLine creates an empty Line holding at most capacity bytes.
//
// It panics if capacity is less than 1.
func NewLine(capacity int) *Line {
	l := &Line{}
	l.init(capacity)

	return l
}

// IndexOf returns the logical position of the first occurrence of token at
// or after offset. The boolean is false when offset is past the end, when
// token cannot fit in the remaining bytes, or when there is no match.
//
// Matches may span the physical wrap of the ring.
func (l *Line) IndexOf(token string, offset int) (int, bool) {
	if offset < 0 || offset > l.length {
		return 0, false
	}
	if offset+len(token) > l.length {
		return 0, false
	}

	last := l.length - len(token)
	for i := offset; i <= last; i++ {
		if l.matchAt(i, token) {
			return i, true
		}
	}

	return 0, false
}

// Contains reports whether token occurs anywhere in the buffer.
func (l *Line) Contains(token string) bool {
	_, ok := l.IndexOf(token, 0)
	return ok
}

// StartsWith reports whether the buffer begins with token.
func (l *Line) StartsWith(token string) bool {
	pos, ok := l.IndexOf(token, 0)
	return ok && pos == 0
}

// AppendString appends the bytes of s one at a time and returns how many were
// appended. The count is short of len(s) when the buffer filled up.
func (l *Line) AppendString(s string) int {
	for i := 0; i < len(s); i++ {
		if !l.Append(s[i]) {
			return i
		}
	}

	return len(s)
}

// Write implements io.Writer. A short write returns ErrFull.
func (l *Line) Write(p []byte) (int, error) {
	for i, b := range p {
		if !l.Append(b) {
			return i, ErrFull
		}
	}

	return len(p), nil
}

// PopUntil drops every byte up to and including the first occurrence of
// token. It returns false and leaves the buffer untouched when token is absent.
func (l *Line) PopUntil(token string) bool {
	pos, ok := l.IndexOf(token, 0)
	if !ok {
		return false
	}
	l.PopFirsts(pos + len(token))

	return true
}

// PopWhile drops leading bytes equal to b and returns how many were dropped.
func (l *Line) PopWhile(b byte) int {
	n := 0
	for n < l.length && l.at(n) == b {
		n++
	}

	return l.PopFirsts(n)
}

// Text returns the bytes in the logical range [from, to) as a string.
// The range is clamped to the buffer content.
func (l *Line) Text(from, to int) string {
	from = max(from, 0)
	to = min(to, l.length)
	if from >= to {
		return ""
	}

	var sb strings.Builder
	sb.Grow(to - from)
	for i := from; i < to; i++ {
		sb.WriteByte(l.at(i))
	}

	return sb.String()
}

// Bytes returns the content as one contiguous slice; see Ring.Contiguous.
func (l *Line) Bytes() []byte {
	return l.Contiguous()
}

// String returns a copy of the content without rearranging the ring.
func (l *Line) String() string {
	return l.Text(0, l.length)
}

func (l *Line) matchAt(i int, token string) bool {
	for j := 0; j < len(token); j++ {
		if l.at(i+j) != token[j] {
			return false
		}
	}

	return true
}
