package condition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/metrics"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/ports"
)

// noMatchHandle is what the model answers when no prompt condition applies.
// It is outside the valid handle set, so the validation guard also rejects it.
const noMatchHandle = "none"

// DefaultPromptTimeout bounds one prompt-condition model call.
const DefaultPromptTimeout = 15 * time.Second

// Resolver orders and evaluates a node's transition conditions. Equation
// conditions are authoritative and checked first; prompt conditions are
// batched into a single advisory model ask whose answer is validated before
// it is trusted.
type Resolver struct {
	llm     ports.CompletionClient
	model   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithModel sets the model used for prompt-condition evaluation.
func WithModel(model string) ResolverOption {
	return func(r *Resolver) { r.model = model }
}

// WithTimeout bounds the prompt-condition model call.
func WithTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.timeout = d }
}

// WithMetrics records completion latency on the given collectors.
func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver. llm may be nil, in which case prompt
// conditions never match (equations still work).
func NewResolver(llm ports.CompletionClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		llm:     llm,
		model:   "gpt-4o-mini",
		timeout: DefaultPromptTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the handle of the first matching transition, or false when
// none matches. All equation conditions are evaluated first in authored
// order; only if none matches are the prompt conditions sent, in their
// authored order, in one model request.
func (r *Resolver) Resolve(ctx context.Context, transitions []domain.TransitionCondition,
	bindings domain.Bindings, userInput string, history []domain.Message) (string, bool) {

	if len(transitions) == 0 {
		return "", false
	}

	// The latest utterance is visible to equations as {{user_input}}.
	scope := bindings.Clone()
	scope[domain.KeyUserInput] = userInput

	var prompts []domain.TransitionCondition
	for _, t := range transitions {
		switch t.Type {
		case domain.ConditionEquation:
			if Evaluate(t.Condition, scope) {
				return t.Handle, true
			}
		case domain.ConditionPrompt:
			prompts = append(prompts, t)
		}
	}

	if len(prompts) == 0 || r.llm == nil {
		return "", false
	}

	handle, ok := r.askModel(ctx, prompts, userInput, history)
	if !ok {
		return "", false
	}

	// Advisory answer: only trust handles we actually offered.
	for _, t := range transitions {
		if t.Handle == handle {
			return handle, true
		}
	}
	r.logger.Warn("model returned unknown transition handle", "handle", handle)
	return "", false
}

type promptVerdict struct {
	Handle string `json:"handle"`
}

func (r *Resolver) askModel(ctx context.Context, prompts []domain.TransitionCondition,
	userInput string, history []domain.Message) (string, bool) {

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("You are routing a live phone conversation. ")
	sb.WriteString("Decide which single condition below matches the caller's latest message, if any.\n\nConditions:\n")
	for _, p := range prompts {
		fmt.Fprintf(&sb, "- handle %q: %s\n", p.Handle, p.Condition)
	}
	fmt.Fprintf(&sb, "\nAnswer with the matching handle, or %q if no condition matches.", noMatchHandle)

	messages := recentHistory(history, 10)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: userInput})

	start := time.Now()
	resp, err := r.llm.Complete(ctx, ports.CompletionRequest{
		Model:    r.model,
		System:   sb.String(),
		Messages: messages,
		Schema: &ports.ResponseSchema{
			Name: "transition_match",
			Schema: map[string]any{
				"type":                 "object",
				"properties":           map[string]any{"handle": map[string]any{"type": "string"}},
				"required":             []string{"handle"},
				"additionalProperties": false,
			},
		},
	})
	r.metrics.ObserveCompletion(time.Since(start).Seconds(), err != nil)
	if err != nil {
		r.logger.Warn("prompt condition evaluation degraded to no match", "err", err)
		return "", false
	}

	var verdict promptVerdict
	if err := json.Unmarshal([]byte(resp.Text), &verdict); err != nil {
		// Tolerate a bare handle string from models without schema support.
		verdict.Handle = strings.Trim(strings.TrimSpace(resp.Text), `"`)
	}
	if verdict.Handle == "" || strings.EqualFold(verdict.Handle, noMatchHandle) {
		return "", false
	}
	return verdict.Handle, true
}

func recentHistory(history []domain.Message, n int) []domain.Message {
	if len(history) <= n {
		return append([]domain.Message(nil), history...)
	}
	return append([]domain.Message(nil), history[len(history)-n:]...)
}
