package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetPut(t *testing.T) {
	t.Run("returns stored value before expiry", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})
		store.Put("k", "v", time.Minute)

		got, ok := store.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v", got)
	})

	t.Run("missing key is a miss", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})

		_, ok := store.Get("absent")
		assert.False(t, ok)
		assert.Equal(t, int64(1), store.Stats().Misses)
	})

	t.Run("overwrite replaces value without growing the store", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})
		store.Put("k", "old", time.Minute)
		store.Put("k", "new", time.Minute)

		got, ok := store.Get("k")
		require.True(t, ok)
		assert.Equal(t, "new", got)
		assert.Equal(t, 1, store.Len())
	})
}

func TestStore_Expiry(t *testing.T) {
	t.Run("zero ttl entry is never retrievable", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})
		store.Put("k", "v", 0)

		_, ok := store.Get("k")
		assert.False(t, ok)
	})

	t.Run("negative ttl entry is never retrievable", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})
		store.Put("k", "v", -time.Second)

		_, ok := store.Get("k")
		assert.False(t, ok)
	})

	t.Run("expired entry is removed on access", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})
		store.Put("k", "v", time.Nanosecond)
		time.Sleep(5 * time.Millisecond)

		_, ok := store.Get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, store.Len())
		assert.Equal(t, int64(1), store.Stats().Expired)
	})

	t.Run("purge removes only expired entries", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 10})
		store.Put("stale-1", "v", time.Nanosecond)
		store.Put("stale-2", "v", time.Nanosecond)
		store.Put("fresh", "v", time.Minute)
		time.Sleep(5 * time.Millisecond)

		removed := store.PurgeExpired()
		assert.Equal(t, 2, removed)
		assert.Equal(t, 1, store.Len())

		_, ok := store.Get("fresh")
		assert.True(t, ok)
	})
}

func TestStore_Eviction(t *testing.T) {
	t.Run("insert at capacity evicts exactly one entry", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 3})
		for i := 0; i < 3; i++ {
			store.Put(fmt.Sprintf("k%d", i), i, time.Minute)
		}
		store.Put("k3", 3, time.Minute)

		assert.Equal(t, 3, store.Len())
		assert.Equal(t, int64(1), store.Stats().Evictions)
	})

	t.Run("least recently used entry is evicted first", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 3})
		store.Put("a", 1, time.Minute)
		store.Put("b", 2, time.Minute)
		store.Put("c", 3, time.Minute)

		// Touch a so b becomes the oldest.
		_, ok := store.Get("a")
		require.True(t, ok)

		store.Put("d", 4, time.Minute)

		_, ok = store.Get("b")
		assert.False(t, ok, "b should have been evicted")
		for _, key := range []string{"a", "c", "d"} {
			_, ok := store.Get(key)
			assert.True(t, ok, "%s should survive", key)
		}
	})

	t.Run("overwriting at capacity does not evict", func(t *testing.T) {
		store := NewStore(Config{MaxEntries: 2})
		store.Put("a", 1, time.Minute)
		store.Put("b", 2, time.Minute)
		store.Put("a", 10, time.Minute)

		assert.Equal(t, 2, store.Len())
		assert.Equal(t, int64(0), store.Stats().Evictions)
	})

	t.Run("unbounded store never evicts", func(t *testing.T) {
		store := NewStore(Config{})
		for i := 0; i < 100; i++ {
			store.Put(fmt.Sprintf("k%d", i), i, time.Minute)
		}
		assert.Equal(t, 100, store.Len())
		assert.Equal(t, int64(0), store.Stats().Evictions)
	})
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(Config{MaxEntries: 10})
	store.Put("k", "v", time.Minute)
	store.Delete("k")
	store.Delete("absent") // no-op

	_, ok := store.Get("k")
	assert.False(t, ok)
}

func TestStore_Stats(t *testing.T) {
	store := NewStore(Config{MaxEntries: 10})
	store.Put("k", "v", time.Minute)

	_, _ = store.Get("k")
	_, _ = store.Get("k")
	_, _ = store.Get("absent")

	stats := store.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}
