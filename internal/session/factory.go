package session

import (
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Factory opens the store of one session. Opening the same key twice sees
// the same values.
type Factory func(sessionKey string) Store

func RedisFactory(client *redis.Client, ttl time.Duration) Factory {
	return func(sessionKey string) Store {
		return NewRedisStore(client, sessionKey, ttl)
	}
}

// MemoryFactory keeps every session for the life of the process.
func MemoryFactory() Factory {
	var mu sync.Mutex
	stores := map[string]Store{}
	return func(sessionKey string) Store {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[sessionKey]
		if !ok {
			s = NewMemoryStore(sessionKey)
			stores[sessionKey] = s
		}
		return s
	}
}
