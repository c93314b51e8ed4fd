package domain

// Action tells the host what to do with a turn result.
const (
	// ActionSpeak says the response and immediately re-enters the engine on
	// NextNodeID without waiting for caller input.
	ActionSpeak = "speak"
	// ActionGather says the response (possibly empty) and waits for the
	// next caller utterance before re-entering.
	ActionGather = "gather"
	// ActionTransfer hands the call to TransferTo and stops driving it.
	ActionTransfer = "transfer"
	// ActionEnd terminates the call after saying the response.
	ActionEnd = "end"
)

// TurnResult is the atomic output of one dispatcher invocation; it is
// immutable once returned. Variables carries the post-turn bindings the host
// must persist before the next turn.
type TurnResult struct {
	Response     string   `json:"response"`
	Action       string   `json:"action"`
	NextNodeID   string   `json:"next_node_id,omitempty"`
	Variables    Bindings `json:"variables"`
	TransferTo   string   `json:"transfer_to,omitempty"`
	TransferType string   `json:"transfer_type,omitempty"`
}
