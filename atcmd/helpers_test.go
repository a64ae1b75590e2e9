package atcmd

import (
	"testing"

	"github.com/arloliu/go-atcmd/clock"
	"github.com/arloliu/go-atcmd/logger"
	"github.com/arloliu/go-atcmd/transport"
	"github.com/stretchr/testify/require"
)

// newTestEngine creates an Engine on an in-memory transport and a manual
// clock starting at start.
func newTestEngine(t *testing.T, start uint32, opts ...Option) (*Engine, *transport.Memory, *clock.Manual) {
	t.Helper()

	mem := transport.NewMemory()
	clk := clock.NewManual(start)

	defaults := []Option{
		WithClock(clk),
		WithLogger(logger.NewNopMockLogger()),
	}

	eng, err := New(mem, append(defaults, opts...)...)
	require.NoError(t, err)

	return eng, mem, clk
}

// execOK sends cmd and requires it to be accepted.
func execOK(t *testing.T, eng *Engine, cmd string) {
	t.Helper()
	require.NoError(t, eng.ExecString(cmd))
	require.True(t, eng.IsExecuting())
}
