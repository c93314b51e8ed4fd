package memory

import (
	"context"
	"sync"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory session store.
func NewStore() *Store {
	return &Store{data: make(map[string]*domain.Session)}
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	// Copy on write so the caller can't mutate stored state by pointer,
	// mirroring what a serializing backend would do.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = copySession(session)
	return nil
}

// Load retrieves a session by ID.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(session), nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the IDs of all live sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func copySession(in *domain.Session) *domain.Session {
	out := *in
	out.Bindings = in.Bindings.Clone()
	out.History = make([]domain.Message, len(in.History))
	copy(out.History, in.History)
	return &out
}
