package voiceflow

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/condition"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/funcexec"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/genai"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/metrics"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/runtime"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/adapters/memory"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/ports"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/session"
)

// Version is the library version, stamped by the release workflow.
var Version = "0.3.0"

// Engine is the high-level entry point: flows in, call turns out. It wires
// the stateless turn core to a flow source and a session store and exposes
// the call lifecycle.
type Engine struct {
	manager *session.Manager
	runtime *runtime.Engine
	loader  ports.FlowLoader

	store   ports.SessionStore
	locker  ports.DistributedLocker
	llm     ports.CompletionClient
	httpc   *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	maxHops int
}

// Option configures the Engine.
type Option func(*Engine)

// WithCompletionClient injects the language-model client used for prompt
// transitions and generative conversation nodes. Without one the engine
// still runs: deterministic routing works, generative replies degrade to a
// fixed apology.
func WithCompletionClient(c ports.CompletionClient) Option {
	return func(e *Engine) { e.llm = c }
}

// WithOpenAI is shorthand for WithCompletionClient over the OpenAI API.
func WithOpenAI(apiKey string) Option {
	return func(e *Engine) { e.llm = genai.NewOpenAIClient(apiKey) }
}

// WithSessionStore replaces the default in-memory store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithLocker enables cross-replica turn serialization.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) { e.locker = locker }
}

// WithHTTPClient sets the client used by HTTP function nodes.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.httpc = c }
}

// WithLogger sets a structured logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxHops overrides the silent-advance cap per turn.
func WithMaxHops(n int) Option {
	return func(e *Engine) { e.maxHops = n }
}

// WithMetrics registers turn, completion, and function collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.metrics = metrics.New(reg) }
}

// New assembles an Engine over the given flow source.
func New(loader ports.FlowLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		loader = memory.NewLoader()
	}
	e := &Engine{loader: loader}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}

	resolverOpts := []condition.ResolverOption{condition.WithLogger(e.logger)}
	generatorOpts := []genai.Option{genai.WithLogger(e.logger)}
	execOpts := []funcexec.Option{funcexec.WithLogger(e.logger)}
	if e.metrics != nil {
		resolverOpts = append(resolverOpts, condition.WithMetrics(e.metrics))
		generatorOpts = append(generatorOpts, genai.WithMetrics(e.metrics))
		execOpts = append(execOpts, funcexec.WithMetrics(e.metrics))
	}
	if e.httpc != nil {
		execOpts = append(execOpts, funcexec.WithHTTPClient(e.httpc))
	}

	runtimeOpts := []runtime.EngineOption{runtime.WithLogger(e.logger)}
	if e.metrics != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithMetrics(e.metrics))
	}
	if e.maxHops > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithMaxHops(e.maxHops))
	}

	e.runtime = runtime.NewEngine(
		condition.NewResolver(e.llm, resolverOpts...),
		funcexec.New(execOpts...),
		genai.New(e.llm, generatorOpts...),
		runtimeOpts...,
	)

	managerOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(e.locker))
	}
	e.manager = session.NewManager(e.loader, e.store, e.runtime, managerOpts...)

	return e, nil
}

// StartCall opens a session on a flow and returns the opening turn.
func (e *Engine) StartCall(ctx context.Context, flowID string) (*domain.Session, domain.TurnResult, error) {
	return e.manager.StartCall(ctx, flowID)
}

// Turn feeds a caller utterance into a session.
func (e *Engine) Turn(ctx context.Context, sessionID, utterance string) (*domain.Session, domain.TurnResult, error) {
	return e.manager.Turn(ctx, sessionID, utterance)
}

// Session loads a session without advancing it.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.manager.Get(ctx, sessionID)
}

// EndCall discards a session.
func (e *Engine) EndCall(ctx context.Context, sessionID string) error {
	return e.manager.EndCall(ctx, sessionID)
}

// Manager exposes the session layer for host adapters.
func (e *Engine) Manager() *session.Manager {
	return e.manager
}

// Loader returns the flow source.
func (e *Engine) Loader() ports.FlowLoader {
	return e.loader
}
