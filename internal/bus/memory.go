package bus

import (
	"context"
	"sync"
)

type subscriber struct {
	id      uint64
	handler Handler
}

// Memory dispatches synchronously on the publisher's goroutine, so a
// subscriber that re-reads storage inside its handler always observes the
// post-mutation state.
type Memory struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscriber
}

func NewMemory() *Memory {
	return &Memory{subs: map[string][]subscriber{}}
}

func (m *Memory) Publish(c context.Context, e Event) error {
	m.mu.RLock()
	subs := make([]subscriber, len(m.subs[e.Topic]))
	copy(subs, m.subs[e.Topic])
	m.mu.RUnlock()

	for _, s := range subs {
		s.handler(c, e)
	}
	return nil
}

func (m *Memory) Subscribe(topic string, h Handler) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs[topic] = append(m.subs[topic], subscriber{id: id, handler: h})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subs[topic]
		for i, s := range subs {
			if s.id == id {
				m.subs[topic] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}
