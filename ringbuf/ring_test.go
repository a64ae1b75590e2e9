package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
	assert.Panics(t, func() { NewLine(-1) })
}

func TestRing_AppendPopFirstRoundTrip(t *testing.T) {
	require := require.New(t)

	r := New[int](4)
	for i := 1; i <= 4; i++ {
		require.True(r.Append(i))
	}

	for i := 1; i <= 4; i++ {
		v, err := r.PopFirst()
		require.NoError(err)
		require.Equal(i, v)
	}
	require.True(r.Empty())
}

func TestRing_CapacityBound(t *testing.T) {
	r := New[int](3)
	assert.True(t, r.Append(1))
	assert.True(t, r.Append(2))
	assert.True(t, r.Append(3))
	assert.True(t, r.Full())

	assert.False(t, r.Append(4))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{1, 2, 3}, r.Contiguous())
}

func TestRing_EmptyPops(t *testing.T) {
	r := New[byte](2)

	_, err := r.PopFirst()
	require.ErrorIs(t, err, ErrEmpty)

	_, err = r.PopLast()
	require.ErrorIs(t, err, ErrEmpty)

	assert.Equal(t, 0, r.PopFirsts(5))
}

func TestRing_PopLast(t *testing.T) {
	r := New[int](3)
	r.Append(1)
	r.Append(2)
	r.Append(3)
	_, _ = r.PopFirst()
	r.Append(4)

	v, err := r.PopLast()
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = r.PopLast()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{2}, r.Contiguous())
}

func TestRing_PopFirsts(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		removed int
		left    []int
	}{
		{name: "none", n: 0, removed: 0, left: []int{1, 2, 3}},
		{name: "negative", n: -2, removed: 0, left: []int{1, 2, 3}},
		{name: "some", n: 2, removed: 2, left: []int{3}},
		{name: "exact", n: 3, removed: 3, left: []int{}},
		{name: "more than length", n: 10, removed: 3, left: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New[int](3)
			r.Append(1)
			r.Append(2)
			r.Append(3)

			assert.Equal(t, tt.removed, r.PopFirsts(tt.n))
			assert.Equal(t, tt.left, r.AppendTo([]int{}))
		})
	}
}

func TestRing_Cut(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		removed  int
		left     []int
	}{
		{name: "empty range", from: 2, to: 2, removed: 0, left: []int{1, 2, 3, 4, 5}},
		{name: "head", from: 0, to: 2, removed: 2, left: []int{3, 4, 5}},
		{name: "middle", from: 1, to: 3, removed: 2, left: []int{1, 4, 5}},
		{name: "tail", from: 3, to: 5, removed: 2, left: []int{1, 2, 3}},
		{name: "clamped", from: -1, to: 9, removed: 5, left: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New[int](5)
			for i := 1; i <= 5; i++ {
				r.Append(i)
			}

			assert.Equal(t, tt.removed, r.Cut(tt.from, tt.to))
			assert.Equal(t, tt.left, r.AppendTo([]int{}))
		})
	}
}

func TestRing_CutAcrossWrap(t *testing.T) {
	r := New[int](5)
	for i := 1; i <= 5; i++ {
		r.Append(i)
	}
	r.PopFirsts(3)
	r.Append(6)
	r.Append(7)
	r.Append(8)
	require.Equal(t, []int{4, 5, 6, 7, 8}, r.AppendTo(nil))

	assert.Equal(t, 2, r.Cut(2, 4))
	assert.Equal(t, []int{4, 5, 8}, r.AppendTo([]int{}))
	assert.True(t, r.Append(9))
	assert.Equal(t, []int{4, 5, 8, 9}, r.Contiguous())
}

func TestRing_At(t *testing.T) {
	r := New[int](3)
	r.Append(10)
	r.Append(20)
	r.Append(30)
	_, _ = r.PopFirst()
	r.Append(40)

	for i, want := range []int{20, 30, 40} {
		v, err := r.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	_, err := r.At(3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = r.At(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRing_ContiguousAfterWrap(t *testing.T) {
	r := New[int](3)
	r.Append(1)
	r.Append(2)
	r.Append(3)
	_, _ = r.PopFirst()
	r.Append(4)

	assert.Equal(t, []int{2, 3, 4}, r.Contiguous())
}

func TestRing_ContiguousAfterDoubleWrap(t *testing.T) {
	r := New[int](3)
	r.Append(1)
	r.Append(2)
	r.Append(3)
	_, _ = r.PopFirst()
	_, _ = r.PopFirst()
	r.Append(4)
	r.Append(5)

	assert.Equal(t, []int{3, 4, 5}, r.Contiguous())
}

func TestRing_ContiguousIsStableWithoutMutation(t *testing.T) {
	r := New[int](5)
	for i := 0; i < 5; i++ {
		r.Append(i)
	}
	r.PopFirsts(3)
	r.Append(5)
	r.Append(6)

	first := r.Contiguous()
	second := r.Contiguous()
	assert.Equal(t, []int{3, 4, 5, 6}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, &first[0], &second[0])
}

func TestRing_AppendToDoesNotRotate(t *testing.T) {
	r := New[int](4)
	for i := 0; i < 4; i++ {
		r.Append(i)
	}
	r.PopFirsts(2)
	r.Append(4)

	assert.Equal(t, []int{2, 3, 4}, r.AppendTo(nil))
	assert.Equal(t, 2, r.start)
}

func TestRing_Clear(t *testing.T) {
	r := New[int](2)
	r.Append(1)
	r.Append(2)
	r.Clear()

	assert.True(t, r.Empty())
	assert.Equal(t, 2, r.Cap())
	assert.Empty(t, r.Contiguous())
	assert.True(t, r.Append(3))
}

func TestRing_ManyWraps(t *testing.T) {
	r := New[int](7)
	next, expect := 0, 0

	for round := 0; round < 50; round++ {
		for !r.Full() {
			r.Append(next)
			next++
		}
		for i := 0; i < 3+round%4; i++ {
			v, err := r.PopFirst()
			require.NoError(t, err)
			require.Equal(t, expect, v)
			expect++
		}

		view := r.Contiguous()
		for i, v := range view {
			require.Equal(t, expect+i, v)
		}
	}
}
