package metrics

import (
	"sync"
	"time"

	"deauthguard/internal/model"
)

// Store holds the most recent stats snapshot per monitored interface.
type Store struct {
	mu        sync.RWMutex
	byIface   map[string]model.Stats
	updatedAt map[string]time.Time
}

func NewStore() *Store {
	return &Store{
		byIface:   make(map[string]model.Stats),
		updatedAt: make(map[string]time.Time),
	}
}

func (s *Store) Update(stats model.Stats) {
	if stats.Interface == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIface[stats.Interface] = stats
	s.updatedAt[stats.Interface] = time.Now().UTC()
}

func (s *Store) Get(iface string) (model.Stats, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.byIface[iface]
	if !ok {
		return model.Stats{}, time.Time{}, false
	}
	return stats, s.updatedAt[iface], true
}

func (s *Store) GetAll() map[string]model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.Stats, len(s.byIface))
	for iface, stats := range s.byIface {
		out[iface] = stats
	}
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byIface = make(map[string]model.Stats)
	s.updatedAt = make(map[string]time.Time)
}
