// Package runtime is the turn dispatcher: the state machine that drives one
// conversational turn through the flow graph.
package runtime

import (
	"context"
	"log/slog"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/condition"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/funcexec"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/genai"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/logging"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/metrics"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/template"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// FatalApology is spoken when the call cannot continue: the control-flow
// pointer references a node the graph does not have, or a silent-advance
// chain never reaches a speaking or terminal node.
const FatalApology = "I'm sorry, something went wrong with this call. Goodbye."

// DefaultMaxHops caps silent advances within one turn, guarding against
// authored cycles of function/set_variable nodes with no exit.
const DefaultMaxHops = 25

// Engine executes turns. It holds no per-call state: bindings and history
// come in with every invocation and leave with the result, so one Engine
// serves any number of concurrent call sessions without locking.
type Engine struct {
	resolver  *condition.Resolver
	functions *funcexec.Executor
	generator *genai.Generator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	maxHops   int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxHops overrides the silent-advance cap.
func WithMaxHops(n int) EngineOption {
	return func(e *Engine) { e.maxHops = n }
}

// WithMetrics records turn counts on the given collectors.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an Engine from its three collaborators.
func NewEngine(resolver *condition.Resolver, functions *funcexec.Executor, generator *genai.Generator, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:  resolver,
		functions: functions,
		generator: generator,
		logger:    logging.NewNop(),
		maxHops:   DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteTurn produces exactly one turn result for the given state. The
// caller's bindings map is never mutated; the result carries the post-turn
// bindings to persist. No error return: every failure mode maps to a result
// the host can act on; the one fatal case speaks FatalApology and ends.
func (e *Engine) ExecuteTurn(ctx context.Context, flow *domain.Flow, nodeID, userInput string,
	bindings domain.Bindings, history []domain.Message) domain.TurnResult {

	vars := bindings.Clone()
	result := e.run(ctx, flow, nodeID, userInput, vars, history)
	result.Variables = vars
	e.metrics.ObserveTurn(result.Action)
	return result
}

func (e *Engine) run(ctx context.Context, flow *domain.Flow, nodeID, userInput string,
	vars domain.Bindings, history []domain.Message) domain.TurnResult {

	current := nodeID
	for hops := 0; hops <= e.maxHops; hops++ {
		node, ok := flow.NodeByID(current)
		if !ok {
			// The one genuinely fatal condition: there is no principled way
			// to continue a call whose control-flow pointer is invalid.
			e.logger.Error("turn references unknown node", "node", current, "flow", flow.ID)
			return domain.TurnResult{Response: FatalApology, Action: domain.ActionEnd}
		}

		switch node.Type {
		case domain.NodeStart:
			res, next, done := e.execStart(node, flow, vars)
			if done {
				return res
			}
			current = next

		case domain.NodeConversation:
			return e.execConversation(ctx, node, flow, userInput, vars, history)

		case domain.NodeFunction:
			res, next, done := e.execFunction(ctx, node, flow, userInput, vars, history)
			if done {
				return res
			}
			current = next

		case domain.NodeSetVariable:
			if node.SetVariable != nil {
				applyAssignments(vars, node.SetVariable.Assignments)
			}
			next, ok := flow.EdgeTarget(node.ID, domain.DefaultHandle)
			if !ok {
				return domain.TurnResult{Action: domain.ActionEnd}
			}
			current = next

		case domain.NodeCallTransfer:
			return e.execTransfer(node, vars)

		case domain.NodeEnd:
			var farewell string
			if node.End != nil {
				farewell = template.Substitute(node.End.Farewell, vars)
			}
			return domain.TurnResult{Response: farewell, Action: domain.ActionEnd}

		default:
			// Forward-compatibility guard: authoring tools may emit node
			// types this engine version does not know.
			e.logger.Warn("unrecognized node type, passing through", "node", node.ID, "type", node.Type)
			next, ok := flow.EdgeTarget(node.ID, domain.DefaultHandle)
			if !ok {
				return domain.TurnResult{Action: domain.ActionEnd}
			}
			current = next
		}
	}

	e.logger.Error("silent advance exceeded hop cap", "flow", flow.ID, "start_node", nodeID, "max_hops", e.maxHops)
	return domain.TurnResult{Response: FatalApology, Action: domain.ActionEnd}
}

// execStart handles the entry node. With a configured greeting it speaks and
// advances; otherwise it is a transparent hop.
func (e *Engine) execStart(node *domain.Node, flow *domain.Flow, vars domain.Bindings) (domain.TurnResult, string, bool) {
	next, hasEdge := flow.EdgeTarget(node.ID, domain.DefaultHandle)

	if cfg := node.Start; cfg != nil && cfg.SpeakFirst && cfg.Greeting != "" {
		greeting := template.Substitute(cfg.Greeting, vars)
		if !hasEdge {
			return domain.TurnResult{Response: greeting, Action: domain.ActionEnd}, "", true
		}
		return domain.TurnResult{Response: greeting, Action: domain.ActionSpeak, NextNodeID: next}, "", true
	}

	if !hasEdge {
		return domain.TurnResult{Action: domain.ActionEnd}, "", true
	}
	return domain.TurnResult{}, next, false
}

func (e *Engine) execConversation(ctx context.Context, node *domain.Node, flow *domain.Flow,
	userInput string, vars domain.Bindings, history []domain.Message) domain.TurnResult {

	cfg := node.Conversation
	if cfg == nil {
		return domain.TurnResult{Response: FatalApology, Action: domain.ActionEnd}
	}
	if cfg.Mode == domain.ContentPrompt {
		return e.execGenerative(ctx, node, flow, cfg, userInput, vars, history)
	}

	// Static content: speak and wait until input arrives, then route on it.
	if userInput == "" {
		return domain.TurnResult{
			Response:   template.Substitute(cfg.Content, vars),
			Action:     domain.ActionGather,
			NextNodeID: node.ID,
		}
	}

	handle, matched := e.resolver.Resolve(ctx, cfg.Transitions, vars, userInput, history)
	if matched {
		next, hasEdge := flow.EdgeTarget(node.ID, handle)
		if !hasEdge {
			return domain.TurnResult{Action: domain.ActionEnd}
		}
		// Advance silently; the next node decides what to say.
		return domain.TurnResult{Action: domain.ActionGather, NextNodeID: next}
	}

	// Deliberate multi-turn retry loop, not an error: re-speak and keep
	// listening on the same node.
	return domain.TurnResult{
		Response:   template.Substitute(cfg.Content, vars),
		Action:     domain.ActionGather,
		NextNodeID: node.ID,
	}
}

func (e *Engine) execGenerative(ctx context.Context, node *domain.Node, flow *domain.Flow,
	cfg *domain.ConversationConfig, userInput string, vars domain.Bindings, history []domain.Message) domain.TurnResult {

	out := e.generator.GenerateTurn(ctx, cfg, userInput, vars, history)
	if out.Variables != nil {
		vars.Merge(out.Variables)
	}

	// The model's proposed transition is advisory: accept it only when it
	// names a handle this node actually has.
	handle := ""
	if out.MatchedHandle != "" && hasHandle(cfg.Transitions, out.MatchedHandle) {
		handle = out.MatchedHandle
	} else if out.MatchedHandle != "" {
		e.logger.Warn("generator proposed unknown handle", "node", node.ID, "handle", out.MatchedHandle)
	}
	if handle == "" && userInput != "" {
		// Independent deterministic re-check, post variable extraction.
		if h, matched := e.resolver.Resolve(ctx, cfg.Transitions, vars, userInput, history); matched {
			handle = h
		}
	}

	if handle == "" {
		// Open-ended dialogue loops here until a defined exit fires.
		return domain.TurnResult{Response: out.Response, Action: domain.ActionGather, NextNodeID: node.ID}
	}

	next, hasEdge := flow.EdgeTarget(node.ID, handle)
	if !hasEdge {
		return domain.TurnResult{Response: out.Response, Action: domain.ActionEnd}
	}
	// The spoken reply is kept even though the transition may have been
	// resolved deterministically rather than by the model. Speak, not
	// gather: the target node has not run yet and the host re-enters it.
	return domain.TurnResult{Response: out.Response, Action: domain.ActionSpeak, NextNodeID: next}
}

// execFunction runs the side-effect and routes on the post-execution
// bindings. Speaking functions return to the host for one turn; silent ones
// are transparent hops.
func (e *Engine) execFunction(ctx context.Context, node *domain.Node, flow *domain.Flow,
	userInput string, vars domain.Bindings, history []domain.Message) (domain.TurnResult, string, bool) {

	cfg := node.Function
	if cfg == nil {
		return domain.TurnResult{Response: FatalApology, Action: domain.ActionEnd}, "", true
	}

	res := e.functions.Execute(ctx, cfg, vars)
	vars.Merge(res.Variables)
	if !res.Success {
		e.logger.Warn("function node degraded", "node", node.ID, "execution_type", cfg.ExecutionType)
	}

	handle, matched := e.resolver.Resolve(ctx, cfg.Transitions, vars, userInput, history)
	if !matched {
		handle = domain.DefaultHandle
	}
	next, hasEdge := flow.EdgeTarget(node.ID, handle)
	if !hasEdge {
		// Terminal by graph design.
		var speech string
		if cfg.Speech != "" {
			speech = template.Substitute(cfg.Speech, vars)
		}
		return domain.TurnResult{Response: speech, Action: domain.ActionEnd}, "", true
	}

	if cfg.Speech != "" {
		return domain.TurnResult{
			Response:   template.Substitute(cfg.Speech, vars),
			Action:     domain.ActionSpeak,
			NextNodeID: next,
		}, "", true
	}
	return domain.TurnResult{}, next, false
}

func (e *Engine) execTransfer(node *domain.Node, vars domain.Bindings) domain.TurnResult {
	cfg := node.Transfer
	if cfg == nil {
		return domain.TurnResult{Response: FatalApology, Action: domain.ActionEnd}
	}
	mode := cfg.Mode
	if mode == "" {
		mode = domain.TransferCold
	}
	return domain.TurnResult{
		Response:     template.Substitute(cfg.Message, vars),
		Action:       domain.ActionTransfer,
		TransferTo:   template.Substitute(cfg.Destination, vars),
		TransferType: mode,
	}
}

func hasHandle(transitions []domain.TransitionCondition, handle string) bool {
	for _, t := range transitions {
		if t.Handle == handle {
			return true
		}
	}
	return false
}
