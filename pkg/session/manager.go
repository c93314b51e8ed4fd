package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/runtime"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/ports"
)

// maxSegments caps speak-then-continue legs inside one caller turn. The
// engine caps silent hops per leg; this caps legs, so a flow authored as an
// endless monologue still hangs up instead of looping.
const maxSegments = 8

// lockTTL bounds a distributed lock's life if a replica dies mid-turn.
const lockTTL = 30 * time.Second

// lockEntry holds the per-session mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager drives calls: it starts sessions, serializes their turns, and
// commits state between them. Locks are reference counted so the map only
// holds entries for sessions with an in-flight turn.
type Manager struct {
	loader ports.FlowLoader
	store  ports.SessionStore
	engine ports.TurnEngine

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables cross-replica locking for shared session stores.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithClock overrides time for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager over a flow source, a session store, and the
// turn engine.
func NewManager(loader ports.FlowLoader, store ports.SessionStore, engine ports.TurnEngine, opts ...Option) *Manager {
	m := &Manager{
		loader: loader,
		store:  store,
		engine: engine,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartCall creates a session for a flow and runs the opening turn. The
// result carries whatever the flow speaks before first waiting for input.
func (m *Manager) StartCall(ctx context.Context, flowID string) (*domain.Session, domain.TurnResult, error) {
	flow, err := m.loader.GetFlow(ctx, flowID)
	if err != nil {
		return nil, domain.TurnResult{}, err
	}
	start, ok := flow.StartNode()
	if !ok {
		return nil, domain.TurnResult{}, fmt.Errorf("flow %s: %w", flowID, domain.ErrNoStartNode)
	}

	now := m.now().UTC()
	session := &domain.Session{
		ID:            uuid.NewString(),
		FlowID:        flowID,
		CurrentNodeID: start.ID,
		Bindings:      domain.NewBindings(flow.Variables),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var result domain.TurnResult
	err = m.withLock(ctx, session.ID, func(ctx context.Context) error {
		result = m.drive(ctx, flow, session, "")
		session.UpdatedAt = m.now().UTC()
		return m.store.Save(ctx, session)
	})
	if err != nil {
		return nil, domain.TurnResult{}, err
	}
	logging.ForCall(m.logger, session.ID, flowID).Info("call started", "action", result.Action)
	return session, result, nil
}

// Turn feeds one caller utterance into an existing session and returns what
// the flow speaks in response. State is committed only after the engine
// produced a result.
func (m *Manager) Turn(ctx context.Context, sessionID, utterance string) (*domain.Session, domain.TurnResult, error) {
	var (
		session *domain.Session
		result  domain.TurnResult
	)
	err := m.withLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.Ended {
			return fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionEnded)
		}
		flow, err := m.loader.GetFlow(ctx, session.FlowID)
		if err != nil {
			return err
		}

		result = m.drive(ctx, flow, session, utterance)
		session.UpdatedAt = m.now().UTC()
		return m.store.Save(ctx, session)
	})
	if err != nil {
		return nil, domain.TurnResult{}, err
	}
	return session, result, nil
}

// Get loads a session without running a turn.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.store.Load(ctx, sessionID)
}

// EndCall removes a session, such as when the caller hangs up mid-flow.
func (m *Manager) EndCall(ctx context.Context, sessionID string) error {
	return m.withLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List returns the IDs of live sessions.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// drive runs engine legs until the call waits for input, transfers, or ends,
// collecting everything spoken along the way into one response.
func (m *Manager) drive(ctx context.Context, flow *domain.Flow, session *domain.Session, utterance string) domain.TurnResult {
	var spoken []string
	nodeID := session.CurrentNodeID
	input := utterance
	logger := logging.ForCall(m.logger, session.ID, flow.ID)

	record := func(res domain.TurnResult) {
		session.Bindings = res.Variables
		if res.Response != "" {
			spoken = append(spoken, res.Response)
			session.History = append(session.History, domain.Message{Role: domain.RoleAssistant, Content: res.Response})
		}
	}

	for i := 0; i < maxSegments; i++ {
		res := m.engine.ExecuteTurn(ctx, flow, nodeID, input, session.Bindings, session.History)
		if i == 0 && utterance != "" {
			// The engine attaches the pending utterance to model requests
			// itself, so it enters stored history only here, ahead of
			// whatever the flow speaks back.
			session.History = append(session.History, domain.Message{Role: domain.RoleUser, Content: utterance})
		}
		record(res)

		switch res.Action {
		case domain.ActionEnd, domain.ActionTransfer:
			session.Ended = true
			session.CurrentNodeID = ""
			res.Response = strings.Join(spoken, " ")
			return res

		case domain.ActionSpeak:
			nodeID = res.NextNodeID
			input = ""

		case domain.ActionGather:
			// A silent advance carries no response and a moved pointer;
			// the target node still owes the caller its words. Anything
			// spoken means the engine already ran the node it waits at.
			if res.Response == "" && res.NextNodeID != "" && res.NextNodeID != nodeID {
				nodeID = res.NextNodeID
				input = ""
				continue
			}
			if res.NextNodeID == "" {
				res.NextNodeID = nodeID
			}
			session.CurrentNodeID = res.NextNodeID
			res.Response = strings.Join(spoken, " ")
			return res

		default:
			logger.Error("engine returned unknown action", "action", res.Action)
			session.Ended = true
			session.CurrentNodeID = ""
			res.Action = domain.ActionEnd
			res.Response = strings.Join(spoken, " ")
			return res
		}
	}

	logger.Error("turn exceeded segment cap")
	session.Ended = true
	session.CurrentNodeID = ""
	spoken = append(spoken, runtime.FatalApology)
	session.History = append(session.History, domain.Message{Role: domain.RoleAssistant, Content: runtime.FatalApology})
	return domain.TurnResult{
		Response:  strings.Join(spoken, " "),
		Action:    domain.ActionEnd,
		Variables: session.Bindings,
	}
}

// withLock serializes fn against other turns for the same session, both in
// process and, when a distributed locker is configured, across replicas.
func (m *Manager) withLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, lockTTL)
		if err != nil {
			return fmt.Errorf("acquiring session lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release session lock, it will expire", "session", sessionID, "err", err)
			}
		}()
	}
	return fn(ctx)
}

func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[sessionID]
	if !ok {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.locks[sessionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}
