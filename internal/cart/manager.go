package cart

import (
	"context"
	"sync"

	"github.com/pradiptha/bookstore/internal/bus"
)

// Manager hands out one Session per cart key within this storefront
// instance, so every request for the same guest session shares the same
// snapshot and busy guard.
type Manager struct {
	store Store
	bus   bus.Bus

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store Store, b bus.Bus) *Manager {
	return &Manager{
		store:    store,
		bus:      b,
		sessions: map[string]*Session{},
	}
}

func (m *Manager) Session(c context.Context, key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := NewSession(c, key, m.store, m.bus)
	m.sessions[key] = s
	return s
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.Close()
	}
	m.sessions = map[string]*Session{}
}
