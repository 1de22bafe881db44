package cache

import (
	"fmt"
	"strings"
	"time"
)

// Store holds settled query entries by key
type Store interface {
	Load(key Key) (any, bool)
	Save(key Key, value any, ttl time.Duration)
	Drop(key Key)
	Purge()
}

// Key identifies one remote resource: an operation plus its parameters
type Key string

// KeyFor builds the key for op and params, e.g. trustboard:v1:influencer:7
func KeyFor(op string, params ...any) Key {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, "trustboard:v1", op)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return Key(strings.Join(parts, ":"))
}

// Keys of the dashboard resources
var (
	StatsKey = KeyFor("influencer-stats")
	ListKey  = KeyFor("influencer-list")
)

// DetailKey is the key of one influencer's detail
func DetailKey(id int) Key {
	return KeyFor("influencer", id)
}
