package domain

// NodeType constants define the control flow behavior of a node.
const (
	// NodeStart is the unique entry point of a flow.
	NodeStart = "start"
	// NodeConversation speaks (static or generated) and listens for input.
	NodeConversation = "conversation"
	// NodeFunction performs an external side-effect (HTTP call or sandboxed code).
	NodeFunction = "function"
	// NodeSetVariable mutates call variables and advances silently.
	NodeSetVariable = "set_variable"
	// NodeCallTransfer hands the call off to another destination.
	NodeCallTransfer = "call_transfer"
	// NodeEnd terminates the call, optionally with a farewell.
	NodeEnd = "end"
)

// Node is one step of conversation logic. Config is a closed tagged union:
// exactly the variant matching Type is non-nil after a flow passes
// load-time validation, so the execution hot path never re-checks shape.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`

	Start        *StartConfig        `json:"start,omitempty" yaml:"start,omitempty"`
	Conversation *ConversationConfig `json:"conversation,omitempty" yaml:"conversation,omitempty"`
	Function     *FunctionConfig     `json:"function,omitempty" yaml:"function,omitempty"`
	SetVariable  *SetVariableConfig  `json:"set_variable,omitempty" yaml:"set_variable,omitempty"`
	Transfer     *TransferConfig     `json:"transfer,omitempty" yaml:"transfer,omitempty"`
	End          *EndConfig          `json:"end,omitempty" yaml:"end,omitempty"`
}

// Transitions returns the authored transition conditions of the node, in
// authored order. Only conversation and function nodes carry transitions.
func (n *Node) Transitions() []TransitionCondition {
	switch {
	case n.Conversation != nil:
		return n.Conversation.Transitions
	case n.Function != nil:
		return n.Function.Transitions
	}
	return nil
}
