package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)

	now = now.Add(30 * time.Second)
	c.Set("b", 3)

	now = now.Add(45 * time.Second)
	_, ok := c.Get("a")
	assert.False(t, ok, "a should be expired")

	assert.Equal(t, 0, c.CleanExpired())
	assert.Equal(t, 1, c.Size())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Size())
	c.Set("c", 3)
	assert.Equal(t, 1, c.Size())
}

func TestManager_CleanAll(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewLRUCache[int](10, time.Minute)
	b := NewLRUCache[string](10, time.Minute)
	a.now = func() time.Time { return now }
	b.now = func() time.Time { return now }
	a.Set("x", 1)
	b.Set("y", "z")

	m := NewManager()
	m.Register(a)
	m.Register(b)

	assert.Equal(t, 0, m.CleanAll())
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, m.CleanAll())

	m.StartCleanup(time.Hour)
	m.Stop()
}
