package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Reserved binding names.
const (
	// KeyUserInput exposes the latest user utterance to equation conditions.
	KeyUserInput = "user_input"
	// KeyRawResponse retains the full body of the last function-node HTTP
	// response so downstream conditions can test it.
	KeyRawResponse = "_raw_response"
)

// Bindings is the mutable name→value mapping scoped to one call session.
// Values are strings, numbers, booleans, nil, or decoded JSON objects.
type Bindings map[string]any

// NewBindings builds the initial bindings from variable declarations.
// Every declared variable gets a value (empty string when no default is
// authored) so bindings are total from the first turn.
func NewBindings(defs []VariableDef) Bindings {
	b := make(Bindings, len(defs))
	for _, d := range defs {
		if d.Default == nil {
			b[d.Name] = ""
			continue
		}
		b[d.Name] = d.Default
	}
	return b
}

// Clone returns a copy safe for per-turn mutation. Values are shared, which
// is fine because the engine only ever replaces them wholesale.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into b, overwriting existing names.
func (b Bindings) Merge(other Bindings) {
	for k, v := range other {
		b[k] = v
	}
}

// Stringify renders a binding value the way it is spoken or compared:
// nil becomes the empty string, numbers drop a trailing ".0", and
// composites render as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the host-persisted lifetime state of one ongoing call.
// The engine itself never retains it; bindings and history are round-tripped
// by the caller between turns.
type Session struct {
	ID            string    `json:"id"`
	FlowID        string    `json:"flow_id"`
	CurrentNodeID string    `json:"current_node_id"`
	Bindings      Bindings  `json:"bindings"`
	History       []Message `json:"history"`
	Ended         bool      `json:"ended"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
