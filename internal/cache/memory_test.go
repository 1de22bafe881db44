package cache

import (
	"testing"
	"time"
)

func TestMemoryStore_SaveLoadDrop(t *testing.T) {
	s := NewMemoryStore(time.Minute, 0)

	s.Save(StatsKey, 3, 0)
	if v, ok := s.Load(StatsKey); !ok || v != 3 {
		t.Fatalf("Load = %v, %v; want 3, true", v, ok)
	}

	s.Drop(StatsKey)
	if _, ok := s.Load(StatsKey); ok {
		t.Error("Expected entry to be gone after Drop")
	}
}

func TestMemoryStore_CollectsExpiredEntries(t *testing.T) {
	s := NewMemoryStore(time.Minute, 5*time.Millisecond)
	collected := make(chan Key, 1)
	s.OnCollect(func(key Key) { collected <- key })

	s.Save(DetailKey(7), "x", 10*time.Millisecond)

	select {
	case key := <-collected:
		if key != DetailKey(7) {
			t.Errorf("collected %s, want %s", key, DetailKey(7))
		}
	case <-time.After(time.Second):
		t.Fatal("Expired entry was never collected")
	}
	if _, ok := s.Load(DetailKey(7)); ok {
		t.Error("Collected entry is still loadable")
	}
}

func TestMemoryStore_PurgeDoesNotReport(t *testing.T) {
	s := NewMemoryStore(time.Minute, 0)
	var reported int
	s.OnCollect(func(Key) { reported++ })

	s.Save(StatsKey, 1, 0)
	s.Save(ListKey, 2, 0)
	s.Purge()

	for _, key := range []Key{StatsKey, ListKey} {
		if _, ok := s.Load(key); ok {
			t.Errorf("%s survived Purge", key)
		}
	}
	if reported != 0 {
		t.Errorf("Purge reported %d entries", reported)
	}
}
