package memory

import (
	"sync"

	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

type Store struct {
	mu     sync.RWMutex
	values map[services.StoreKey]string
}

func NewStore() *Store {
	return &Store{
		values: make(map[services.StoreKey]string),
	}
}

func (s *Store) Get(key services.StoreKey) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *Store) Set(key services.StoreKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Delete(key services.StoreKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
