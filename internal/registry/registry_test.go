package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/socktest/pkg/model"
)

func fill(t *testing.T, r *Registry, n int) []int {
	t.Helper()
	var got []int
	for i := 0; i < n; i++ {
		idx, err := r.Allocate()
		require.NoError(t, err)
		require.NoError(t, r.Bind(idx, model.Slot{Handle: 100 + i}))
		got = append(got, idx)
	}
	return got
}

func TestAllocateFillsEverySlot(t *testing.T) {
	r := New()
	got := fill(t, r, Capacity)

	seen := make(map[int]bool)
	for _, idx := range got {
		assert.False(t, seen[idx], "index %d allocated twice", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, Capacity)

	_, err := r.Allocate()
	assert.ErrorIs(t, err, ErrAllSlotsBusy)
}

func TestReleaseMakesSlotReusable(t *testing.T) {
	r := New()
	fill(t, r, Capacity)

	require.NoError(t, r.Release(4))
	idx, err := r.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 4, idx)
}

func TestAllocateDoesNotReserve(t *testing.T) {
	r := New()
	a, err := r.Allocate()
	require.NoError(t, err)
	b, err := r.Allocate()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStaleIndexFails(t *testing.T) {
	r := New()
	fill(t, r, 2)
	require.NoError(t, r.Release(1))

	_, err := r.Slot(1)
	assert.ErrorIs(t, err, ErrSlotNotOpen)
	assert.ErrorIs(t, r.Release(1), ErrSlotNotOpen)
}

func TestSelect(t *testing.T) {
	r := New()
	fill(t, r, 3)

	require.NoError(t, r.Select(2))
	assert.Equal(t, 2, r.Current())

	for _, idx := range []int{5, -1, Capacity, 42} {
		err := r.Select(idx)
		assert.True(t, errors.Is(err, ErrSlotNotOpen), "select %d: %v", idx, err)
	}
	assert.Equal(t, 2, r.Current(), "failed select must not move the current index")

	s, err := r.CurrentSlot()
	require.NoError(t, err)
	assert.Equal(t, 102, s.Handle)
}

func TestCurrentSlotOnEmptyRegistry(t *testing.T) {
	_, err := New().CurrentSlot()
	assert.ErrorIs(t, err, ErrSlotNotOpen)
}

func TestCloseAll(t *testing.T) {
	r := New()
	fill(t, r, 3)

	var closed []int
	err := r.CloseAll(func(h int) error {
		closed = append(closed, h)
		if h == 101 {
			return errors.New("boom")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fd 101")
	assert.Equal(t, []int{100, 101, 102}, closed)
	for _, s := range r.Slots() {
		assert.False(t, s.Open())
	}
}
