package history

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsZeroCapacity(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(-3)
	require.Error(t, err)
}

func TestPushNewestFirst(t *testing.T) {
	b, err := New(DefaultCapacity)
	require.NoError(t, err)

	for v := uint32(1); v <= 5; v++ {
		b.Push(v)
	}
	require.Equal(t, []uint32{5, 4, 3, 2, 1}, b.Snapshot())

	latest, ok := b.Latest()
	require.True(t, ok)
	require.Equal(t, uint32(5), latest)
}

func TestPushTruncatesOldest(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)

	for v := uint32(1); v <= 5; v++ {
		b.Push(v)
	}
	require.Equal(t, []uint32{5, 4, 3}, b.Snapshot())
	require.Equal(t, 3, b.Cap())
}

func TestDuplicateAfterFailures(t *testing.T) {
	b, err := New(DefaultCapacity)
	require.NoError(t, err)

	for v := uint32(10); v < 15; v++ {
		b.Push(v)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Duplicate())
	}

	snap := b.Snapshot()
	require.Len(t, snap, 8)
	require.Equal(t, []uint32{14, 14, 14, 14, 13, 12, 11, 10}, snap)
}

func TestDuplicateAtCapacityKeepsLength(t *testing.T) {
	b, err := New(5)
	require.NoError(t, err)

	for v := uint32(1); v <= 5; v++ {
		b.Push(v)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Duplicate())
		require.Equal(t, 5, b.Len())
	}
	require.Equal(t, []uint32{5, 5, 5, 5, 4}, b.Snapshot())
}

func TestDuplicateEmpty(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)

	require.ErrorIs(t, b.Duplicate(), ErrEmptyBuffer)
	require.Equal(t, 0, b.Len())

	_, ok := b.Latest()
	require.False(t, ok)
}

func TestSnapshotIsACopy(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	b.Push(1)

	snap := b.Snapshot()
	snap[0] = 99
	require.Equal(t, []uint32{1}, b.Snapshot())
}

func TestCapacityInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(300))
	for _, capacity := range []int{1, 2, 7, 300} {
		b, err := New(capacity)
		require.NoError(t, err)
		for n := 0; n < 2*capacity+10; n++ {
			if rng.Intn(3) == 0 {
				_ = b.Duplicate()
			} else {
				b.Push(rng.Uint32())
			}
			require.LessOrEqual(t, len(b.Snapshot()), capacity)
		}
	}
}
