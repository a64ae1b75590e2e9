package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsed_AcrossOverflow(t *testing.T) {
	start := uint32(math.MaxUint32 - 9)
	now := uint32(20)

	assert.Equal(t, uint32(30), Elapsed(now, start))
	assert.True(t, Exceeded(now, start, 29*time.Millisecond))
	assert.False(t, Exceeded(now, start, 30*time.Millisecond))
	assert.True(t, Reached(now, start, 30*time.Millisecond))
}

func TestToMillis_Saturates(t *testing.T) {
	assert.Equal(t, uint32(0), ToMillis(-time.Second))
	assert.Equal(t, uint32(0), ToMillis(0))
	assert.Equal(t, uint32(1500), ToMillis(1500*time.Millisecond))
	assert.Equal(t, uint32(math.MaxUint32), ToMillis(100*24*time.Hour))
}

func TestManual_AdvanceWraps(t *testing.T) {
	c := NewManual(math.MaxUint32)
	start := c.Millis()

	c.Advance(5 * time.Millisecond)
	require.Equal(t, uint32(4), c.Millis())
	assert.Equal(t, uint32(5), Elapsed(c.Millis(), start))

	c.Set(100)
	assert.Equal(t, uint32(100), c.Millis())
}

func TestSystem_Monotonic(t *testing.T) {
	c := NewSystem()
	first := c.Millis()
	time.Sleep(2 * time.Millisecond)

	assert.GreaterOrEqual(t, Elapsed(c.Millis(), first), uint32(1))
}
