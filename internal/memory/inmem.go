package memory

import (
	"context"
	"sync"
)

// InMemoryStore is a Store backed by a map. History is lost on exit.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
	max      int
	ids      *ids
}

// NewInMemoryStore returns a store keeping at most maxMessages per session.
func NewInMemoryStore(maxMessages int) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string][]Message),
		max:      limitOrDefault(maxMessages),
		ids:      newIDs(),
	}
}

func (s *InMemoryStore) Load(ctx context.Context, session string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.sessions[session]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *InMemoryStore) Append(ctx context.Context, session string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	stamped := stamp(s.ids, msgs)

	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(s.sessions[session], stamped...)
	if over := len(all) - s.max; over > 0 {
		all = append([]Message(nil), all[over:]...)
	}
	s.sessions[session] = all
	return nil
}

func (s *InMemoryStore) Clear(ctx context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}
