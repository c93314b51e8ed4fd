// Package funcexec executes function nodes: outbound HTTP calls with
// response mapping, and caller-authored transformation code in a sandbox.
// No failure in this package escapes as an error; everything degrades to a
// Result the dispatcher can keep driving the call with.
package funcexec

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/metrics"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// DefaultHTTPTimeout bounds an HTTP function call unless the node overrides it.
const DefaultHTTPTimeout = 10 * time.Second

// DefaultCodeTimeout bounds sandboxed code execution unless the node overrides it.
const DefaultCodeTimeout = 2 * time.Second

// Result is the outcome of one function execution. On failure Variables is
// empty; the dispatcher still resolves transitions so flows can branch on
// the absence of expected variables.
type Result struct {
	Success   bool
	Variables domain.Bindings
}

// Executor runs function nodes.
type Executor struct {
	client      *http.Client
	httpTimeout time.Duration
	codeTimeout time.Duration
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithHTTPClient injects the transport used for HTTP functions.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Executor) { e.client = c }
}

// WithHTTPTimeout sets the default timeout for HTTP functions.
func WithHTTPTimeout(d time.Duration) Option {
	return func(e *Executor) { e.httpTimeout = d }
}

// WithCodeTimeout sets the default timeout for sandboxed code.
func WithCodeTimeout(d time.Duration) Option {
	return func(e *Executor) { e.codeTimeout = d }
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics records execution latency on the given collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		client:      &http.Client{},
		httpTimeout: DefaultHTTPTimeout,
		codeTimeout: DefaultCodeTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches on the node's execution type.
func (e *Executor) Execute(ctx context.Context, cfg *domain.FunctionConfig, bindings domain.Bindings) Result {
	start := time.Now()
	var res Result
	switch {
	case cfg.ExecutionType == domain.ExecutionHTTP && cfg.HTTP != nil:
		res = e.executeHTTP(ctx, cfg.HTTP, bindings)
	case cfg.ExecutionType == domain.ExecutionCode && cfg.Code != nil:
		res = e.executeCode(ctx, cfg.Code, bindings)
	default:
		e.logger.Warn("function node with unusable config", "execution_type", cfg.ExecutionType)
		res = Result{Success: false, Variables: domain.Bindings{}}
	}
	e.metrics.ObserveFunction(time.Since(start).Seconds(), !res.Success)
	return res
}
