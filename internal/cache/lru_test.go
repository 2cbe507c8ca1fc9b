package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRU[string](4, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_GetOrLoad(t *testing.T) {
	c := NewLRU[[]string](4, time.Minute)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Food", "Rent"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("expense", load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Food", "Rent"}, v)
	}
	assert.Equal(t, 1, calls)

	_, err := c.GetOrLoad("broken", func() ([]string, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	_, ok := c.Get("broken")
	assert.False(t, ok, "errors are not cached")
}

func TestLRU_DeleteAndPurge(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	assert.Equal(t, 1, c.Len())
	c.Purge()
	assert.Equal(t, 0, c.Len())
	c.Set("c", 3)
	assert.Equal(t, 1, c.Len())
}
