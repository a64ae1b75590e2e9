package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrappedLine returns a Line whose content s starts near the physical end
// of the backing array so that it wraps.
func wrappedLine(t *testing.T, capacity int, s string) *Line {
	t.Helper()

	l := NewLine(capacity)
	skip := capacity - len(s)/2
	for i := 0; i < skip; i++ {
		require.True(t, l.Append('#'))
	}
	l.PopFirsts(skip)
	require.Equal(t, len(s), l.AppendString(s))

	return l
}

func TestLine_IndexOf(t *testing.T) {
	tests := []struct {
		name    string
		content string
		token   string
		offset  int
		pos     int
		found   bool
	}{
		{name: "at start", content: "OK\r\n", token: "OK", offset: 0, pos: 0, found: true},
		{name: "in middle", content: "\r\nOK\r\n", token: "OK\r\n", offset: 0, pos: 2, found: true},
		{name: "absent", content: "\r\nERR", token: "ERROR", offset: 0, found: false},
		{name: "offset skips first match", content: "a\r\nb\r\n", token: "\r\n", offset: 2, pos: 4, found: true},
		{name: "offset at match", content: "a\r\nb\r\n", token: "\r\n", offset: 1, pos: 1, found: true},
		{name: "offset past length", content: "abc", token: "a", offset: 4, found: false},
		{name: "token longer than rest", content: "abc", token: "bcd", offset: 1, found: false},
		{name: "empty token", content: "abc", token: "", offset: 2, pos: 2, found: true},
		{name: "case sensitive", content: "ok\r\n", token: "OK", offset: 0, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLine(16)
			l.AppendString(tt.content)

			pos, ok := l.IndexOf(tt.token, tt.offset)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.pos, pos)
			}
		})
	}
}

func TestLine_IndexOfCountsOccurrences(t *testing.T) {
	l := NewLine(32)
	l.AppendString("\r\nOK\r\n\r\nOK\r\nOK")

	count := 0
	for pos, ok := l.IndexOf("OK", 0); ok; pos, ok = l.IndexOf("OK", pos+1) {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestLine_IndexOfAcrossWrap(t *testing.T) {
	l := wrappedLine(t, 8, "\r\nOK\r\n")

	pos, ok := l.IndexOf("OK\r\n", 0)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
	assert.Equal(t, "\r\nOK\r\n", l.String())
}

func TestLine_StartsWith(t *testing.T) {
	l := NewLine(8)
	l.AppendString("+CPIN:")

	assert.True(t, l.StartsWith("+CP"))
	assert.True(t, l.StartsWith(""))
	assert.False(t, l.StartsWith("CPIN"))
	assert.False(t, l.StartsWith("+CPIN: READY"))
}

func TestLine_AppendStringPartial(t *testing.T) {
	l := NewLine(4)
	assert.Equal(t, 4, l.AppendString("ERROR"))
	assert.Equal(t, "ERRO", l.String())
	assert.Equal(t, 0, l.AppendString("x"))
}

func TestLine_WriteShort(t *testing.T) {
	l := NewLine(3)

	n, err := l.Write([]byte("AT"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = l.Write([]byte("\r\n"))
	require.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 1, n)
}

func TestLine_PopUntil(t *testing.T) {
	l := NewLine(32)
	l.AppendString("+CPIN: READY\r\n\r\nOK\r\n")

	require.True(t, l.PopUntil("\r\n"))
	assert.Equal(t, "\r\nOK\r\n", l.String())

	assert.False(t, l.PopUntil("ERROR"))
	assert.Equal(t, "\r\nOK\r\n", l.String())

	require.True(t, l.PopUntil("OK\r\n"))
	assert.True(t, l.Empty())
}

func TestLine_PopWhile(t *testing.T) {
	l := NewLine(8)
	l.AppendString("   1\r\n")

	assert.Equal(t, 3, l.PopWhile(' '))
	assert.Equal(t, 0, l.PopWhile(' '))
	assert.True(t, l.StartsWith("1"))
}

func TestLine_Text(t *testing.T) {
	l := wrappedLine(t, 10, "+CFUN: 1\r\n")

	assert.Equal(t, "+CFUN:", l.Text(0, 6))
	assert.Equal(t, "1", l.Text(7, 8))
	assert.Equal(t, "1\r\n", l.Text(7, 100))
	assert.Equal(t, "", l.Text(5, 5))
	assert.Equal(t, "", l.Text(6, 2))
}

func TestLine_BytesLinearizes(t *testing.T) {
	l := wrappedLine(t, 6, "ERROR\r")
	assert.Equal(t, []byte("ERROR\r"), l.Bytes())
	assert.True(t, l.StartsWith("ERROR"))
}
