package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_JSONOutput(t *testing.T) {
	t.Setenv(EnvVar, "")

	var out bytes.Buffer
	l := NewSlogWriter(&out, InfoLevel, false)

	l.Debug("hidden")
	l.Info("command sent", "cmd", "AT", "len", 4)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "command sent", rec["msg"])
	assert.Equal(t, "AT", rec["cmd"])
	assert.Contains(t, rec, "ts")
	assert.NotContains(t, rec, "time")
}

func TestSlogLogger_SetLevel(t *testing.T) {
	var out bytes.Buffer
	l := NewSlogWriter(&out, ErrorLevel, false)
	assert.Equal(t, ErrorLevel, l.Level())

	l.Warn("dropped")
	assert.Zero(t, out.Len())

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	l.Debug("kept")
	assert.Contains(t, out.String(), "kept")
}

func TestSlogLogger_WithSharesLevel(t *testing.T) {
	var out bytes.Buffer
	parent := NewSlogWriter(&out, InfoLevel, false)
	child := parent.With("session", "abc")

	parent.SetLevel(WarnLevel)
	assert.Equal(t, WarnLevel, child.Level())

	child.Warn("timeout")
	assert.Contains(t, out.String(), `"session":"abc"`)
}

func TestSlogLogger_ConsoleHandler(t *testing.T) {
	t.Setenv(EnvVar, "development")

	var out bytes.Buffer
	l := NewSlogWriter(&out, InfoLevel, false)
	l.Info("console line", "result", "OK")

	assert.Contains(t, out.String(), "console line")
	assert.NotContains(t, out.String(), `"msg"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		ok    bool
	}{
		{"debug", DebugLevel, true},
		{"info", InfoLevel, true},
		{"warning", WarnLevel, true},
		{"error", ErrorLevel, true},
		{"fatal", FatalLevel, true},
		{"verbose", InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
	assert.Equal(t, "warn", WarnLevel.String())
}

func TestSetDefault(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() { SetDefault(prev) })

	m := NewMockLogger()
	m.On("Info", "hello", mock.Anything).Return().Once()

	SetDefault(m)
	SetDefault(nil)
	Info("hello", "k", "v")

	m.AssertExpectations(t)
}
