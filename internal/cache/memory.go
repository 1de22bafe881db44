package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps settled entries in process memory. An entry that is
// not saved again within its ttl is collected by a sweep every interval.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates a store whose entries live for gcTime by default
func NewMemoryStore(gcTime, sweep time.Duration) *MemoryStore {
	return &MemoryStore{items: gocache.New(gcTime, sweep)}
}

func (s *MemoryStore) Load(key Key) (any, bool) {
	return s.items.Get(string(key))
}

// Save stores value under key; a zero ttl uses the store default
func (s *MemoryStore) Save(key Key, value any, ttl time.Duration) {
	s.items.Set(string(key), value, ttl)
}

func (s *MemoryStore) Drop(key Key) {
	s.items.Delete(string(key))
}

func (s *MemoryStore) Purge() {
	s.items.Flush()
}

// OnCollect registers fn to run whenever an entry leaves the store,
// by expiry or by Drop. Purge does not report.
func (s *MemoryStore) OnCollect(fn func(key Key)) {
	s.items.OnEvicted(func(k string, _ any) { fn(Key(k)) })
}
