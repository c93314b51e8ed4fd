// Package schema parses authored flow documents (the visual editor's JSON
// export, or hand-written YAML) into the typed domain model. The untyped
// per-node config bag is decoded into its tagged-union variant here, at load
// time, so the execution hot path never inspects shape.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

type nodeDoc struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config" yaml:"config"`
}

type flowDoc struct {
	ID        string               `json:"id" yaml:"id"`
	Name      string               `json:"name" yaml:"name"`
	Nodes     []nodeDoc            `json:"nodes" yaml:"nodes"`
	Edges     []domain.Edge        `json:"edges" yaml:"edges"`
	Variables []domain.VariableDef `json:"variables" yaml:"variables"`
}

// Parse reads a flow document. JSON is tried first (the editor's export
// format); anything else is treated as YAML.
func Parse(data []byte) (*domain.Flow, error) {
	var doc flowDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("flow document is neither valid JSON nor YAML: %w", yerr)
		}
	}

	flow := &domain.Flow{
		ID:        doc.ID,
		Name:      doc.Name,
		Edges:     doc.Edges,
		Variables: doc.Variables,
	}
	for _, nd := range doc.Nodes {
		node, err := decodeNode(nd)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.ID, err)
		}
		flow.Nodes = append(flow.Nodes, node)
	}
	return flow, nil
}

// decodeNode resolves the config bag into the variant matching the node
// type. Unknown types keep an empty node so the engine's pass-through guard
// can handle them.
func decodeNode(nd nodeDoc) (domain.Node, error) {
	node := domain.Node{ID: nd.ID, Type: nd.Type}

	var target any
	switch nd.Type {
	case domain.NodeStart:
		node.Start = &domain.StartConfig{}
		target = node.Start
	case domain.NodeConversation:
		node.Conversation = &domain.ConversationConfig{}
		target = node.Conversation
	case domain.NodeFunction:
		node.Function = &domain.FunctionConfig{}
		target = node.Function
	case domain.NodeSetVariable:
		node.SetVariable = &domain.SetVariableConfig{}
		target = node.SetVariable
	case domain.NodeCallTransfer:
		node.Transfer = &domain.TransferConfig{}
		target = node.Transfer
	case domain.NodeEnd:
		node.End = &domain.EndConfig{}
		target = node.End
	default:
		return node, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return node, fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(nd.Config); err != nil {
		return node, fmt.Errorf("decoding %s config: %w", nd.Type, err)
	}
	return node, nil
}
