package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

const statsPrefix = "stats"

type Stats struct {
	Kept    int `json:"kept"`
	Deleted int `json:"deleted"`
}

func (s Stats) Reviewed() int {
	return s.Kept + s.Deleted
}

// StatsService is the persisted Counters implementation. Every mutation is
// written through to the KVStore; counters never drop below zero.
type StatsService struct {
	kv  KVStore
	key StoreKey

	mu    sync.Mutex
	stats Stats
}

func NewStatsService(kv KVStore, server, user string) *StatsService {
	return &StatsService{
		kv:  kv,
		key: StoreKey{Prefix: statsPrefix, Server: server, User: user},
	}
}

func (s *StatsService) Load() error {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	var stats Stats
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			return fmt.Errorf("parsing stats: %w", err)
		}
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

func (s *StatsService) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *StatsService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
	return s.saveLocked()
}

func (s *StatsService) IncrementKept() {
	s.mutate(func(st *Stats) { st.Kept++ })
}

func (s *StatsService) DecrementKept() {
	s.mutate(func(st *Stats) { st.Kept = max(st.Kept-1, 0) })
}

func (s *StatsService) IncrementDeleted() {
	s.mutate(func(st *Stats) { st.Deleted++ })
}

func (s *StatsService) DecrementDeleted() {
	s.mutate(func(st *Stats) { st.Deleted = max(st.Deleted-1, 0) })
}

func (s *StatsService) mutate(fn func(*Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.stats)
	if err := s.saveLocked(); err != nil {
		log.Printf("stats: %v", err)
	}
}

func (s *StatsService) saveLocked() error {
	data, err := json.Marshal(s.stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}
	return nil
}
