// Package genai produces conversational turns: one structured-output model
// completion yielding a spoken reply, an optional transition proposal, and
// extracted variables.
package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/metrics"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/template"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/ports"
)

// ApologyReply is spoken when the model call fails outright. The node stays
// unresolved so the conversation continues on the same node next turn; the
// call must never go silent because a downstream AI service broke.
const ApologyReply = "I'm sorry, I didn't catch that. Could you say that again?"

// DefaultModel is used when a conversation node does not name one.
const DefaultModel = "gpt-4o-mini"

// DefaultTimeout bounds one turn-generation completion call.
const DefaultTimeout = 20 * time.Second

// Output is one generated turn. MatchedHandle is the model's advisory
// transition proposal; the dispatcher validates it before trusting it.
type Output struct {
	Response      string
	MatchedHandle string
	Variables     domain.Bindings
}

// Generator drives generative conversation nodes.
type Generator struct {
	llm     ports.CompletionClient
	model   string
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithDefaultModel sets the model used when the node names none.
func WithDefaultModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithTimeout bounds the completion call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// WithMetrics records completion latency on the given collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// New creates a Generator.
func New(llm ports.CompletionClient, opts ...Option) *Generator {
	g := &Generator{
		llm:     llm,
		model:   DefaultModel,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// turnSchema is the structured-output contract for one generated turn.
var turnSchema = &ports.ResponseSchema{
	Name: "conversation_turn",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"response":   map[string]any{"type": "string"},
			"transition": map[string]any{"type": "string"},
			"variables":  map[string]any{"type": "object", "additionalProperties": true},
		},
		"required":             []string{"response"},
		"additionalProperties": false,
	},
}

type turnPayload struct {
	Response   string         `json:"response"`
	Transition string         `json:"transition"`
	Variables  map[string]any `json:"variables"`
}

// GenerateTurn asks the model for the next spoken reply given the node's
// prompt, the current bindings, the conversation so far, and the
// transitions it may signal. Any failure degrades to the apology reply with
// no transition and no variables.
func (g *Generator) GenerateTurn(ctx context.Context, cfg *domain.ConversationConfig,
	userInput string, bindings domain.Bindings, history []domain.Message) Output {

	if g.llm == nil {
		return Output{Response: ApologyReply}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := append([]domain.Message(nil), history...)
	if userInput != "" {
		messages = append(messages, domain.Message{Role: domain.RoleUser, Content: userInput})
	}

	model := cfg.Model.Model
	if model == "" {
		model = g.model
	}

	start := time.Now()
	resp, err := g.llm.Complete(ctx, ports.CompletionRequest{
		Model:       model,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
		System:      g.buildSystemPrompt(cfg, bindings),
		Messages:    messages,
		Schema:      turnSchema,
	})
	g.metrics.ObserveCompletion(time.Since(start).Seconds(), err != nil)
	if err != nil {
		g.logger.Warn("turn generation degraded to apology", "err", err)
		return Output{Response: ApologyReply}
	}

	var payload turnPayload
	if err := json.Unmarshal([]byte(resp.Text), &payload); err != nil || payload.Response == "" {
		// Invalid structured output: keep the raw reply, drop the rest.
		return Output{Response: strings.TrimSpace(resp.Text)}
	}

	out := Output{
		Response:      payload.Response,
		MatchedHandle: payload.Transition,
	}
	if len(payload.Variables) > 0 {
		out.Variables = domain.Bindings(payload.Variables)
	}
	return out
}

// buildSystemPrompt assembles the single system instruction: the substituted
// authored prompt, the variable state for grounding, and every transition
// from this node. Equation transitions are listed too so the model knows
// about them, even though the dispatcher re-checks those deterministically.
func (g *Generator) buildSystemPrompt(cfg *domain.ConversationConfig, bindings domain.Bindings) string {
	var sb strings.Builder
	sb.WriteString(template.Substitute(cfg.Content, bindings))
	sb.WriteString("\n\nYou are speaking on a live phone call. Reply in 1-3 short sentences of plain spoken language, no markup or formatting.")

	if len(bindings) > 0 {
		sb.WriteString("\n\nCurrent call variables:\n")
		names := make([]string, 0, len(bindings))
		for name := range bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- %s: %s\n", name, domain.Stringify(bindings[name]))
		}
	}

	if len(cfg.Transitions) > 0 {
		sb.WriteString("\nWhen one of these conditions is met, set \"transition\" to its handle:\n")
		for _, t := range cfg.Transitions {
			fmt.Fprintf(&sb, "- handle %q: %s\n", t.Handle, t.Condition)
		}
		sb.WriteString("Leave \"transition\" empty otherwise.\n")
	}

	sb.WriteString("\nPut any values the caller provides (names, numbers, choices) into \"variables\".")
	return sb.String()
}
