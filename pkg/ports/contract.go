package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// RunSessionStoreContract verifies that a SessionStore implementation honors
// the interface contract. Adapter test suites call this against their own
// backend.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	newSession := func(id string) *domain.Session {
		now := time.Now().UTC().Truncate(time.Second)
		return &domain.Session{
			ID:            id,
			FlowID:        "flow-1",
			CurrentNodeID: "start",
			Bindings:      domain.Bindings{"caller_name": "Ada", "attempts": "2"},
			History: []domain.Message{
				{Role: domain.RoleAssistant, Content: "Hello!"},
				{Role: domain.RoleUser, Content: "Hi"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("save and load", func(t *testing.T) {
		session := newSession(sessionID)
		require.NoError(t, store.Save(ctx, session))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, session.FlowID, loaded.FlowID)
		assert.Equal(t, session.CurrentNodeID, loaded.CurrentNodeID)
		assert.Equal(t, "Ada", loaded.Bindings["caller_name"])
		require.Len(t, loaded.History, 2)
		assert.Equal(t, domain.RoleUser, loaded.History[1].Role)
	})

	t.Run("load is isolated from later mutation", func(t *testing.T) {
		session := newSession(sessionID)
		require.NoError(t, store.Save(ctx, session))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Bindings["caller_name"] = "Mallory"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", again.Bindings["caller_name"])
	})

	t.Run("load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, newSession(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("list", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, newSession(id1)))
		require.NoError(t, store.Save(ctx, newSession(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
