package session

import (
	"context"
	"sync"
)

type memoryStore struct {
	key    string
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore(key string) Store {
	return &memoryStore{key: key, values: make(map[string]string)}
}

func (s *memoryStore) Key() string { return s.key }

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}
