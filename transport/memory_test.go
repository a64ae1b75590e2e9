package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, tr Transport) string {
	t.Helper()

	var out []byte
	for n := tr.Available(); n > 0; n-- {
		b, err := tr.ReadByte()
		require.NoError(t, err)
		out = append(out, b)
	}

	return string(out)
}

func TestMemory_FeedAndRead(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, 0, m.Available())

	_, err := m.ReadByte()
	require.ErrorIs(t, err, ErrNoData)

	m.Feed("\r\nOK")
	m.Feed("\r\n")
	assert.Equal(t, 6, m.Available())
	assert.Equal(t, "\r\nOK\r\n", readAll(t, m))
}

func TestMemory_WriteCapture(t *testing.T) {
	m := NewMemory()

	n, err := m.Write([]byte("AT\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("AT\r\n"), m.Written())

	assert.Equal(t, []byte("AT\r\n"), m.TakeWritten())
	assert.Empty(t, m.Written())
}

func TestMemory_WriteLimit(t *testing.T) {
	m := NewMemory()
	m.SetWriteLimit(2)

	n, err := m.Write([]byte("AT\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("AT"), m.Written())

	m.SetWriteLimit(-1)
	n, _ = m.Write([]byte("AT\r\n"))
	assert.Equal(t, 4, n)
}

func TestMemory_WriteError(t *testing.T) {
	m := NewMemory()
	boom := errors.New("port gone")
	m.SetWriteError(boom)

	_, err := m.Write([]byte("AT\r\n"))
	require.ErrorIs(t, err, boom)

	m.SetWriteError(nil)
	_, err = m.Write([]byte("AT\r\n"))
	require.NoError(t, err)
}

func TestMemory_Responder(t *testing.T) {
	m := NewMemory()
	m.SetResponder(func(p []byte) []byte {
		if string(p) == "AT\r\n" {
			return []byte("\r\nOK\r\n")
		}
		return []byte("\r\nERROR\r\n")
	})

	_, _ = m.Write([]byte("AT\r\n"))
	assert.Equal(t, "\r\nOK\r\n", readAll(t, m))

	_, _ = m.Write([]byte("ATX\r\n"))
	assert.Equal(t, "\r\nERROR\r\n", readAll(t, m))

	m.SetWriteLimit(1)
	_, _ = m.Write([]byte("AT\r\n"))
	assert.Equal(t, 0, m.Available())
}

func TestMemory_Close(t *testing.T) {
	m := NewMemory()
	m.Feed("OK")
	require.NoError(t, m.Close())

	_, err := m.Write([]byte("AT"))
	require.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, "OK", readAll(t, m))
	_, err = m.ReadByte()
	require.ErrorIs(t, err, ErrClosed)
}
