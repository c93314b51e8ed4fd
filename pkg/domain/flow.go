package domain

// DefaultHandle is the fallback exit path consulted when no edge matches a
// resolved handle exactly. Edges authored without an explicit sourceHandle
// are treated as carrying this handle.
const DefaultHandle = "default"

// VariableDef declares a call variable and its initial value.
type VariableDef struct {
	Name    string `json:"name" yaml:"name"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Edge is a labeled directed exit from one node to another.
type Edge struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"source_handle,omitempty"`
}

// Handle returns the effective exit label of the edge.
func (e Edge) Handle() string {
	if e.SourceHandle == "" {
		return DefaultHandle
	}
	return e.SourceHandle
}

// Flow is an immutable authored snapshot of a conversation graph.
// It is loaded once per call and never mutated during execution.
type Flow struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes     []Node        `json:"nodes" yaml:"nodes"`
	Edges     []Edge        `json:"edges" yaml:"edges"`
	Variables []VariableDef `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// NodeByID returns the node with the given ID.
func (f *Flow) NodeByID(id string) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// StartNode returns the single entry node of the flow.
func (f *Flow) StartNode() (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].Type == NodeStart {
			return &f.Nodes[i], true
		}
	}
	return nil, false
}

// EdgeTarget resolves the successor of a node for a given handle.
// The first edge whose handle matches exactly wins; if none matches, the
// edge labeled DefaultHandle is consulted. A false return means the node is
// terminal for this path.
func (f *Flow) EdgeTarget(source, handle string) (string, bool) {
	if handle == "" {
		handle = DefaultHandle
	}
	for _, e := range f.Edges {
		if e.Source == source && e.Handle() == handle {
			return e.Target, true
		}
	}
	if handle != DefaultHandle {
		for _, e := range f.Edges {
			if e.Source == source && e.Handle() == DefaultHandle {
				return e.Target, true
			}
		}
	}
	return "", false
}
