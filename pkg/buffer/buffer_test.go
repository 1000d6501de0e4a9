package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	t.Run("rejects non-positive capacity", func(t *testing.T) {
		_, err := NewRing[int](0, DropOldest, nil)
		assert.Error(t, err)

		_, err = NewRing[int](-5, DropOldest, nil)
		assert.Error(t, err)
	})

	t.Run("valid capacity", func(t *testing.T) {
		ring, err := NewRing[int](4, DropOldest, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, ring.Capacity())
		assert.Equal(t, 0, ring.Size())
	})
}

func TestRingFIFO(t *testing.T) {
	ring, err := NewRing[string](3, DropNewest, nil)
	require.NoError(t, err)

	assert.True(t, ring.Write("a"))
	assert.True(t, ring.Write("b"))
	assert.True(t, ring.Write("c"))

	v, ok := ring.Read()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	assert.True(t, ring.Write("d"))

	for _, want := range []string{"b", "c", "d"} {
		v, ok := ring.Read()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}

	_, ok = ring.Read()
	assert.False(t, ok)
}

func TestRingDropOldest(t *testing.T) {
	var dropped []int
	ring, err := NewRing[int](2, DropOldest, func(item int) {
		dropped = append(dropped, item)
	})
	require.NoError(t, err)

	assert.True(t, ring.Write(1))
	assert.True(t, ring.Write(2))
	assert.True(t, ring.Write(3)) // evicts 1

	assert.Equal(t, []int{1}, dropped)
	assert.Equal(t, uint64(1), ring.Dropped())

	batch := ring.ReadBatch(10)
	assert.Equal(t, []int{2, 3}, batch)
}

func TestRingDropNewest(t *testing.T) {
	var dropped []int
	ring, err := NewRing[int](2, DropNewest, func(item int) {
		dropped = append(dropped, item)
	})
	require.NoError(t, err)

	assert.True(t, ring.Write(1))
	assert.True(t, ring.Write(2))
	assert.False(t, ring.Write(3)) // rejected

	assert.Equal(t, []int{3}, dropped)
	assert.Equal(t, uint64(1), ring.Dropped())

	batch := ring.ReadBatch(10)
	assert.Equal(t, []int{1, 2}, batch)
}

func TestRingReadBatch(t *testing.T) {
	ring, err := NewRing[int](5, DropNewest, nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		ring.Write(i)
	}

	assert.Equal(t, []int{1, 2}, ring.ReadBatch(2))
	assert.Equal(t, 3, ring.Size())
	assert.Equal(t, []int{3, 4, 5}, ring.ReadBatch(10))
	assert.Nil(t, ring.ReadBatch(10))
}

func TestRingClear(t *testing.T) {
	ring, err := NewRing[int](3, DropOldest, nil)
	require.NoError(t, err)

	ring.Write(1)
	ring.Write(2)
	ring.Clear()

	assert.Equal(t, 0, ring.Size())
	_, ok := ring.Read()
	assert.False(t, ok)

	// Reusable after Clear.
	assert.True(t, ring.Write(9))
	v, ok := ring.Read()
	require.True(t, ok)
	assert.Equal(t, 9, v)
}

func TestRingConcurrentAccess(t *testing.T) {
	ring, err := NewRing[int](128, DropOldest, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ring.Write(base*1000 + i)
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			ring.Read()
		}
	}()

	wg.Wait()
	assert.LessOrEqual(t, ring.Size(), ring.Capacity())
}
