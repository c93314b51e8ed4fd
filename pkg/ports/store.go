package ports

import (
	"context"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// SessionStore persists call sessions (bindings + history) between turns.
// The engine never holds session state; the host commits a turn's variables
// through this interface only after consuming the result.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session, or domain.ErrSessionNotFound.
	Load(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all live sessions.
	List(ctx context.Context) ([]string, error)
}
