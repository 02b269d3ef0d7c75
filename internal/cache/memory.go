package cache

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process map. It backs local
// development without a Redis instance and the package tests.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates a new MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get retrieves a single value
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.values[key]
	return val, ok, nil
}

// Put stores a single value
func (s *MemoryStore) Put(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// GetAll retrieves values for keys; absent keys are omitted
func (s *MemoryStore) GetAll(ctx context.Context, keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// PutAll stores all values
func (s *MemoryStore) PutAll(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

// Update runs the fetch-mutate-store cycle under the store lock, which
// serializes writers the way the Redis transaction does across processes
func (s *MemoryStore) Update(ctx context.Context, keys []string, mutate func(current map[string]string) (map[string]string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			current[k] = v
		}
	}
	updated, err := mutate(current)
	if err != nil {
		return err
	}
	for k, v := range updated {
		s.values[k] = v
	}
	return nil
}
