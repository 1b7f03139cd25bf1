// Package cache provides the in-memory TTL store used by the generation
// pipeline and the discovery service.
//
// Eviction policy: least-recently-used. Both Get and Put refresh an entry's
// recency; when an insert would push the store past its configured maximum
// size, the least-recently-used entry is evicted first. Expired entries are
// purged lazily on access and in bulk via PurgeExpired.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Config controls store behavior.
type Config struct {
	MaxEntries int // maximum number of entries; <= 0 means unbounded
}

// entry is a single cached value.
type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
}

// Store is a mutex-guarded key-value store with per-entry expiry and
// LRU eviction. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	config  Config
	order   *list.List               // front = most recently used
	entries map[string]*list.Element // key -> element holding *entry

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewStore creates a store with the given configuration.
func NewStore(config Config) *Store {
	return &Store{
		config:  config,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Get returns the value for key, or (nil, false) when the key is absent or
// expired. Expired entries are removed on access.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	e := elem.Value.(*entry)
	if s.isExpired(e, time.Now()) {
		s.removeElement(elem)
		s.expired++
		s.misses++
		return nil, false
	}

	s.order.MoveToFront(elem)
	s.hits++
	return e.value, true
}

// Put inserts or overwrites key with value. A ttl <= 0 produces an entry that
// is already expired and therefore absent on the next Get; zero-TTL inserts
// behave as a no-op cache write rather than an error.
func (s *Store) Put(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expiresAt := now.Add(ttl)

	if elem, ok := s.entries[key]; ok {
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		s.order.MoveToFront(elem)
		return
	}

	if s.config.MaxEntries > 0 && s.order.Len() >= s.config.MaxEntries {
		s.evictOldest()
	}

	elem := s.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	s.entries[key] = elem
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.removeElement(elem)
	}
}

// PurgeExpired scans the store and removes every expired entry, returning
// how many were removed. Suitable for a periodic janitor goroutine.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		if e := elem.Value.(*entry); s.isExpired(e, now) {
			s.removeElement(elem)
			s.expired++
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Entries:   s.order.Len(),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Expired:   s.expired,
	}
}

// isExpired must be called with the lock held.
func (s *Store) isExpired(e *entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// evictOldest must be called with the lock held.
func (s *Store) evictOldest() {
	elem := s.order.Back()
	if elem == nil {
		return
	}
	s.removeElement(elem)
	s.evictions++
}

// removeElement must be called with the lock held.
func (s *Store) removeElement(elem *list.Element) {
	s.order.Remove(elem)
	delete(s.entries, elem.Value.(*entry).key)
}
