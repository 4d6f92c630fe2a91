package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/core"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCacheEviction(t *testing.T) {
	c, _ := newTestCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Get("key1") // key2 is now least recently used
	c.Set("key4", "value4")

	_, found := c.Get("key2")
	assert.False(t, found, "key2 should have been evicted")
	for _, k := range []string{"key1", "key3", "key4"} {
		_, found := c.Get(k)
		assert.True(t, found, "%s should still exist", k)
	}
	assert.Equal(t, 3, c.Size())
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	c, clock := newTestCache[[]core.Entity](10, time.Minute)

	c.Set("company", []core.Entity{{ID: "c1", Name: "Acme"}})
	got, found := c.Get("company")
	require.True(t, found, "entry should exist immediately")
	assert.Len(t, got, 1)

	clock.advance(2 * time.Minute)
	_, found = c.Get("company")
	assert.False(t, found, "entry should have expired")
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c, clock := newTestCache[string](100, time.Minute)
	c.Set("key1", "value1")
	c.Set("key2", "value2")
	clock.advance(30 * time.Second)
	c.Set("key3", "value3")
	clock.advance(45 * time.Second)

	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestLRUCachePurgeAndStats(t *testing.T) {
	c, _ := newTestCache[int](10, time.Hour)
	c.Set("a", 1)
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	assert.EqualValues(t, 1, s.Hits)
	assert.EqualValues(t, 1, s.Misses)
	assert.EqualValues(t, 1, s.Size)

	c.Purge()
	assert.Equal(t, 0, c.Size())
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
}

func TestManagerSweep(t *testing.T) {
	a, clockA := newTestCache[string](10, time.Minute)
	b, clockB := newTestCache[string](10, time.Minute)
	a.Set("x", "1")
	b.Set("y", "2")
	b.Set("z", "3")
	clockA.advance(time.Hour)
	clockB.advance(time.Hour)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	assert.Equal(t, 3, m.Sweep())

	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func BenchmarkLRUCache(b *testing.B) {
	c := NewLRUCache[[]core.Entity](1000, time.Hour)
	entities := []core.Entity{{ID: "c1", Name: "Acme", Kind: core.KindCompany}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("k%d", i%100)
		if i%10 == 0 {
			c.Set(key, entities)
		} else {
			c.Get(key)
		}
	}
}
