// Package validator checks authored flows at load time so execution can
// assume a well-formed graph.
package validator

import (
	"fmt"
	"strings"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// ValidationError aggregates every problem found in one flow.
type ValidationError struct {
	FlowID   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flow %q is invalid: %s", e.FlowID, strings.Join(e.Problems, "; "))
}

// ValidateFlow checks structural invariants: exactly one start node, unique
// node IDs, edges that resolve, one edge per (source, handle) pair, and
// config variants matching node types.
func ValidateFlow(flow *domain.Flow) error {
	var problems []string

	ids := make(map[string]bool, len(flow.Nodes))
	starts := 0
	for i := range flow.Nodes {
		n := &flow.Nodes[i]
		if n.ID == "" {
			problems = append(problems, "node with empty id")
			continue
		}
		if ids[n.ID] {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = true
		if n.Type == domain.NodeStart {
			starts++
		}
		problems = append(problems, checkConfig(n)...)
	}
	if starts != 1 {
		problems = append(problems, fmt.Sprintf("flow must have exactly one start node, found %d", starts))
	}

	handles := make(map[string]bool, len(flow.Edges))
	for _, e := range flow.Edges {
		if !ids[e.Source] {
			problems = append(problems, fmt.Sprintf("edge references missing source %q", e.Source))
		}
		if !ids[e.Target] {
			problems = append(problems, fmt.Sprintf("edge references missing target %q", e.Target))
		}
		key := e.Source + "\x00" + e.Handle()
		if handles[key] {
			problems = append(problems, fmt.Sprintf("duplicate edge for (%s, %s)", e.Source, e.Handle()))
		}
		handles[key] = true
	}

	for _, v := range flow.Variables {
		if v.Name == "" {
			problems = append(problems, "variable declaration with empty name")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{FlowID: flow.ID, Problems: problems}
	}
	return nil
}

func checkConfig(n *domain.Node) []string {
	var problems []string
	switch n.Type {
	case domain.NodeConversation:
		cfg := n.Conversation
		switch {
		case cfg == nil:
			problems = append(problems, fmt.Sprintf("conversation node %q has no config", n.ID))
		case cfg.Mode != domain.ContentStatic && cfg.Mode != domain.ContentPrompt:
			problems = append(problems, fmt.Sprintf("conversation node %q has unknown mode %q", n.ID, cfg.Mode))
		case cfg.Content == "":
			problems = append(problems, fmt.Sprintf("conversation node %q has empty content", n.ID))
		}
		if cfg != nil {
			for _, t := range cfg.Transitions {
				if t.Type != domain.ConditionEquation && t.Type != domain.ConditionPrompt {
					problems = append(problems, fmt.Sprintf("node %q transition %q has unknown type %q", n.ID, t.Handle, t.Type))
				}
				if t.Handle == "" {
					problems = append(problems, fmt.Sprintf("node %q has a transition without a handle", n.ID))
				}
			}
		}
	case domain.NodeFunction:
		cfg := n.Function
		switch {
		case cfg == nil:
			problems = append(problems, fmt.Sprintf("function node %q has no config", n.ID))
		case cfg.ExecutionType == domain.ExecutionHTTP && cfg.HTTP == nil:
			problems = append(problems, fmt.Sprintf("function node %q is http-typed but has no http config", n.ID))
		case cfg.ExecutionType == domain.ExecutionCode && cfg.Code == nil:
			problems = append(problems, fmt.Sprintf("function node %q is code-typed but has no code config", n.ID))
		case cfg.ExecutionType != domain.ExecutionHTTP && cfg.ExecutionType != domain.ExecutionCode:
			problems = append(problems, fmt.Sprintf("function node %q has unknown execution type %q", n.ID, cfg.ExecutionType))
		}
		if cfg != nil && cfg.Code != nil && cfg.Code.Output == "" {
			problems = append(problems, fmt.Sprintf("function node %q code config has no output variable", n.ID))
		}
	case domain.NodeSetVariable:
		if n.SetVariable == nil || len(n.SetVariable.Assignments) == 0 {
			problems = append(problems, fmt.Sprintf("set_variable node %q has no assignments", n.ID))
		}
	case domain.NodeCallTransfer:
		if n.Transfer == nil || n.Transfer.Destination == "" {
			problems = append(problems, fmt.Sprintf("call_transfer node %q has no destination", n.ID))
		}
	}
	return problems
}
