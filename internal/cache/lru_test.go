package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[int](2, nil)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRU(2, func(key string, _ int) { evicted = append(evicted, key) })

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a") // b becomes the oldest
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestLRU_ReplaceRunsEvict(t *testing.T) {
	var evicted []int
	c := NewLRU(2, func(_ string, v int) { evicted = append(evicted, v) })

	c.Set("a", 1)
	c.Set("a", 2)
	assert.Equal(t, []int{1}, evicted)
}

func TestLRU_GetOrSet(t *testing.T) {
	c := NewLRU[string](4, nil)

	v, loaded := c.GetOrSet("k", "first")
	assert.False(t, loaded)
	assert.Equal(t, "first", v)

	v, loaded = c.GetOrSet("k", "second")
	assert.True(t, loaded)
	assert.Equal(t, "first", v)
}

func TestLRU_RemoveAndClear(t *testing.T) {
	var evicted int
	c := NewLRU(4, func(string, int) { evicted++ })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, evicted)
}

func TestLRU_NonPositiveCapacity(t *testing.T) {
	c := NewLRU[int](0, nil)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Stats().Capacity)
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[int](8, nil)
	c.Set("a", 1)
	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	s := c.Stats()
	assert.Equal(t, 1, s.Size)
	assert.Equal(t, uint64(2), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.InDelta(t, 2.0/3.0, s.HitRate, 0.0001)
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](64, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%100)
				c.Set(key, i)
				_, _ = c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}
