package services

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

const (
	settingsOrderPrefix      = "settings.order"
	settingsSkipVideosPrefix = "settings.skipVideos"
)

type SettingsSource interface {
	OrderMode() domain.OrderMode
	SkipVideos() bool
	// Subscribe registers fn to run after every change of either setting.
	Subscribe(fn func()) (unsubscribe func())
}

type Settings struct {
	Order      domain.OrderMode `json:"order"`
	SkipVideos bool             `json:"skipVideos"`
}

// SettingsStore is a SettingsSource persisted in a KVStore under the
// server+user namespace. Values are written before listeners run.
type SettingsStore struct {
	kv     KVStore
	server string
	user   string

	mu        sync.RWMutex
	current   Settings
	listeners map[int]func()
	nextID    int
}

// NewSettingsStore loads persisted settings, falling back to defaults for
// anything not stored yet.
func NewSettingsStore(kv KVStore, server, user string, defaults Settings) (*SettingsStore, error) {
	s := &SettingsStore{
		kv:        kv,
		server:    server,
		user:      user,
		current:   defaults,
		listeners: make(map[int]func()),
	}
	if s.current.Order == "" {
		s.current.Order = domain.OrderRandom
	}

	raw, ok, err := kv.Get(s.key(settingsOrderPrefix))
	if err != nil {
		return nil, fmt.Errorf("loading order setting: %w", err)
	}
	if ok {
		mode, err := domain.ParseOrderMode(raw)
		if err != nil {
			return nil, fmt.Errorf("loading order setting: %w", err)
		}
		s.current.Order = mode
	}

	raw, ok, err = kv.Get(s.key(settingsSkipVideosPrefix))
	if err != nil {
		return nil, fmt.Errorf("loading skip videos setting: %w", err)
	}
	if ok {
		skip, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("loading skip videos setting: %w", err)
		}
		s.current.SkipVideos = skip
	}

	return s, nil
}

func (s *SettingsStore) key(prefix string) StoreKey {
	return StoreKey{Prefix: prefix, Server: s.server, User: s.user}
}

func (s *SettingsStore) OrderMode() domain.OrderMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Order
}

func (s *SettingsStore) SkipVideos() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.SkipVideos
}

func (s *SettingsStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *SettingsStore) SetOrderMode(mode domain.OrderMode) error {
	if _, err := domain.ParseOrderMode(string(mode)); err != nil {
		return err
	}
	return s.Update(Settings{Order: mode, SkipVideos: s.SkipVideos()})
}

func (s *SettingsStore) SetSkipVideos(skip bool) error {
	return s.Update(Settings{Order: s.OrderMode(), SkipVideos: skip})
}

// Update persists next and notifies subscribers when it differs from the
// current settings.
func (s *SettingsStore) Update(next Settings) error {
	mode, err := domain.ParseOrderMode(string(next.Order))
	if err != nil {
		return err
	}
	next.Order = mode

	s.mu.Lock()
	if next == s.current {
		s.mu.Unlock()
		return nil
	}
	if err := s.kv.Set(s.key(settingsOrderPrefix), string(next.Order)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving order setting: %w", err)
	}
	if err := s.kv.Set(s.key(settingsSkipVideosPrefix), strconv.FormatBool(next.SkipVideos)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving skip videos setting: %w", err)
	}
	s.current = next
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (s *SettingsStore) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
