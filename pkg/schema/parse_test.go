package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

const orderFlowJSON = `{
  "id": "order-status",
  "name": "Order status line",
  "variables": [
    {"name": "caller_name", "default": ""},
    {"name": "attempts", "default": 0}
  ],
  "nodes": [
    {"id": "start", "type": "start", "config": {"greeting": "Thanks for calling!", "speak_first": true}},
    {"id": "ask", "type": "conversation", "config": {
      "mode": "static",
      "content": "What is your order number?",
      "transitions": [
        {"type": "equation", "condition": "{{user_input}} exists", "handle": "have_number"}
      ]
    }},
    {"id": "lookup", "type": "function", "config": {
      "execution_type": "http",
      "http": {
        "method": "GET",
        "url": "https://orders.internal/v1/{{user_input}}",
        "timeout_seconds": 5,
        "response_map": {"order_status": "status"}
      },
      "transitions": [
        {"type": "equation", "condition": "{{order_status}} exists", "handle": "found"}
      ]
    }},
    {"id": "chat", "type": "conversation", "config": {
      "mode": "prompt",
      "content": "Summarize the status {{order_status}} for the caller.",
      "model_params": {"model": "gpt-4o", "temperature": 0.2, "max_tokens": 150}
    }},
    {"id": "bump", "type": "set_variable", "config": {
      "assignments": [{"variable": "attempts", "operation": "increment"}]
    }},
    {"id": "handoff", "type": "call_transfer", "config": {
      "destination": "+15550100", "mode": "warm", "message": "Connecting you now."
    }},
    {"id": "bye", "type": "end", "config": {"farewell": "Goodbye!"}}
  ],
  "edges": [
    {"source": "start", "target": "ask"},
    {"source": "ask", "target": "lookup", "sourceHandle": "have_number"},
    {"source": "lookup", "target": "chat", "sourceHandle": "found"},
    {"source": "lookup", "target": "bye", "sourceHandle": "default"}
  ]
}`

func TestParseJSON(t *testing.T) {
	flow, err := Parse([]byte(orderFlowJSON))
	require.NoError(t, err)

	assert.Equal(t, "order-status", flow.ID)
	require.Len(t, flow.Nodes, 7)
	require.Len(t, flow.Edges, 4)
	require.Len(t, flow.Variables, 2)

	start, ok := flow.NodeByID("start")
	require.True(t, ok)
	require.NotNil(t, start.Start)
	assert.Equal(t, "Thanks for calling!", start.Start.Greeting)
	assert.True(t, start.Start.SpeakFirst)

	ask, ok := flow.NodeByID("ask")
	require.True(t, ok)
	require.NotNil(t, ask.Conversation)
	assert.Equal(t, domain.ContentStatic, ask.Conversation.Mode)
	require.Len(t, ask.Conversation.Transitions, 1)
	assert.Equal(t, domain.ConditionEquation, ask.Conversation.Transitions[0].Type)
	assert.Equal(t, "have_number", ask.Conversation.Transitions[0].Handle)

	lookup, ok := flow.NodeByID("lookup")
	require.True(t, ok)
	require.NotNil(t, lookup.Function)
	assert.Equal(t, domain.ExecutionHTTP, lookup.Function.ExecutionType)
	require.NotNil(t, lookup.Function.HTTP)
	assert.Equal(t, 5, lookup.Function.HTTP.TimeoutSeconds)
	assert.Equal(t, "status", lookup.Function.HTTP.ResponseMap["order_status"])

	chat, ok := flow.NodeByID("chat")
	require.True(t, ok)
	require.NotNil(t, chat.Conversation)
	assert.Equal(t, domain.ContentPrompt, chat.Conversation.Mode)
	assert.Equal(t, "gpt-4o", chat.Conversation.Model.Model)
	require.NotNil(t, chat.Conversation.Model.Temperature)
	assert.InDelta(t, 0.2, *chat.Conversation.Model.Temperature, 1e-9)
	require.NotNil(t, chat.Conversation.Model.MaxTokens)
	assert.Equal(t, 150, *chat.Conversation.Model.MaxTokens)

	bump, ok := flow.NodeByID("bump")
	require.True(t, ok)
	require.NotNil(t, bump.SetVariable)
	require.Len(t, bump.SetVariable.Assignments, 1)
	assert.Equal(t, domain.OpIncrement, bump.SetVariable.Assignments[0].Operation)

	handoff, ok := flow.NodeByID("handoff")
	require.True(t, ok)
	require.NotNil(t, handoff.Transfer)
	assert.Equal(t, domain.TransferWarm, handoff.Transfer.Mode)

	target, ok := flow.EdgeTarget("ask", "have_number")
	require.True(t, ok)
	assert.Equal(t, "lookup", target)

	// An unknown handle falls back to the default edge.
	target, ok = flow.EdgeTarget("lookup", "no_such_handle")
	require.True(t, ok)
	assert.Equal(t, "bye", target)
}

func TestParseYAML(t *testing.T) {
	doc := `
id: survey
nodes:
  - id: start
    type: start
    config:
      greeting: "Hi {{caller_name}}"
      speak_first: true
  - id: bye
    type: end
    config:
      farewell: Bye now
edges:
  - source: start
    target: bye
`
	flow, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "survey", flow.ID)
	start, ok := flow.StartNode()
	require.True(t, ok)
	require.NotNil(t, start.Start)
	assert.Equal(t, "Hi {{caller_name}}", start.Start.Greeting)
	bye, ok := flow.NodeByID("bye")
	require.True(t, ok)
	require.NotNil(t, bye.End)
	assert.Equal(t, "Bye now", bye.End.Farewell)
}

func TestParseUnknownNodeType(t *testing.T) {
	flow, err := Parse([]byte(`{"id":"f","nodes":[{"id":"x","type":"hologram","config":{"foo":1}}],"edges":[]}`))
	require.NoError(t, err)

	node, ok := flow.NodeByID("x")
	require.True(t, ok)
	assert.Equal(t, "hologram", node.Type)
	assert.Nil(t, node.Conversation)
	assert.Nil(t, node.Function)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("{not json\n\t- nor: yaml: at: all"))
	assert.Error(t, err)
}
