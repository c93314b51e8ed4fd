package runtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/condition"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/funcexec"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/genai"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/ports"
)

type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	if f.err != nil {
		return ports.CompletionResponse{}, f.err
	}
	return ports.CompletionResponse{Text: f.text}, nil
}

func newTestEngine(llm ports.CompletionClient) *Engine {
	return NewEngine(
		condition.NewResolver(llm),
		funcexec.New(),
		genai.New(llm),
	)
}

func equation(cond, handle string) domain.TransitionCondition {
	return domain.TransitionCondition{Type: domain.ConditionEquation, Condition: cond, Handle: handle}
}

// greetFlow is the three-node scenario: start -> static conversation -> end.
func greetFlow() *domain.Flow {
	return &domain.Flow{
		ID: "greet",
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeStart, Start: &domain.StartConfig{}},
			{ID: "ask", Type: domain.NodeConversation, Conversation: &domain.ConversationConfig{
				Mode:    domain.ContentStatic,
				Content: "Need help?",
				Transitions: []domain.TransitionCondition{
					equation(`{{user_input}} CONTAINS "yes"`, "H"),
				},
			}},
			{ID: "bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Bye"}},
		},
		Edges: []domain.Edge{
			{Source: "start", Target: "ask"},
			{Source: "ask", Target: "bye", SourceHandle: "H"},
		},
	}
}

func TestExecuteTurn_EndToEndScenario(t *testing.T) {
	e := newTestEngine(nil)
	flow := greetFlow()
	ctx := context.Background()
	vars := domain.Bindings{}

	// Turn 1: silent start advance, static content spoken, gather on same node.
	r1 := e.ExecuteTurn(ctx, flow, "start", "", vars, nil)
	if r1.Response != "Need help?" || r1.Action != domain.ActionGather || r1.NextNodeID != "ask" {
		t.Fatalf("turn 1 = %+v", r1)
	}

	// Turn 2: input matches, silent advance to the end node, nothing spoken yet.
	r2 := e.ExecuteTurn(ctx, flow, r1.NextNodeID, "yes please", r1.Variables, nil)
	if r2.Response != "" || r2.Action != domain.ActionGather || r2.NextNodeID != "bye" {
		t.Fatalf("turn 2 = %+v", r2)
	}

	// Turn 3: re-entered on the end node.
	r3 := e.ExecuteTurn(ctx, flow, r2.NextNodeID, "", r2.Variables, nil)
	if r3.Response != "Bye" || r3.Action != domain.ActionEnd || r3.NextNodeID != "" {
		t.Fatalf("turn 3 = %+v", r3)
	}
}

func TestExecuteTurn_Idempotent(t *testing.T) {
	e := newTestEngine(nil)
	flow := greetFlow()
	ctx := context.Background()

	first := e.ExecuteTurn(ctx, flow, "ask", "yes", domain.Bindings{"a": "1"}, nil)
	for i := 0; i < 5; i++ {
		again := e.ExecuteTurn(ctx, flow, "ask", "yes", domain.Bindings{"a": "1"}, nil)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("replay %d diverged: %+v vs %+v", i, first, again)
		}
	}
}

func TestExecuteTurn_NoMatchRetriesSameNode(t *testing.T) {
	e := newTestEngine(nil)
	flow := greetFlow()

	r := e.ExecuteTurn(context.Background(), flow, "ask", "what?", domain.Bindings{}, nil)
	if r.Response != "Need help?" || r.Action != domain.ActionGather || r.NextNodeID != "ask" {
		t.Fatalf("expected retry loop on same node, got %+v", r)
	}
}

func TestExecuteTurn_StartSpeaksFirst(t *testing.T) {
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeStart, Start: &domain.StartConfig{
				SpeakFirst: true, Greeting: "Hi {{caller_name}}!",
			}},
			{ID: "bye", Type: domain.NodeEnd, End: &domain.EndConfig{}},
		},
		Edges: []domain.Edge{{Source: "start", Target: "bye"}},
	}

	r := e.ExecuteTurn(context.Background(), flow, "start", "", domain.Bindings{"caller_name": "Ada"}, nil)
	if r.Response != "Hi Ada!" || r.Action != domain.ActionSpeak || r.NextNodeID != "bye" {
		t.Fatalf("got %+v", r)
	}
}

func TestExecuteTurn_UnknownNodeIsFatal(t *testing.T) {
	e := newTestEngine(nil)
	r := e.ExecuteTurn(context.Background(), greetFlow(), "nowhere", "", domain.Bindings{}, nil)
	if r.Action != domain.ActionEnd || r.Response != FatalApology {
		t.Fatalf("got %+v", r)
	}
}

func TestExecuteTurn_SetVariableChain(t *testing.T) {
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "set", Type: domain.NodeSetVariable, SetVariable: &domain.SetVariableConfig{
				Assignments: []domain.Assignment{
					{Variable: "count", Operation: domain.OpSet, Value: "2"},
					{Variable: "count", Operation: domain.OpIncrement},
					// Later assignments read earlier results within the node.
					{Variable: "summary", Operation: domain.OpSet, Value: "count={{count}}"},
					{Variable: "summary", Operation: domain.OpAppend, Value: "!"},
				},
			}},
			{ID: "bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "{{summary}}"}},
		},
		Edges: []domain.Edge{{Source: "set", Target: "bye"}},
	}

	// set_variable never speaks: it recurses into the end node this turn.
	r := e.ExecuteTurn(context.Background(), flow, "set", "", domain.Bindings{}, nil)
	if r.Action != domain.ActionEnd || r.Response != "count=3!" {
		t.Fatalf("got %+v", r)
	}
	if r.Variables["count"] != float64(3) {
		t.Errorf("count = %v", r.Variables["count"])
	}
}

func TestExecuteTurn_FunctionSilentHopBranches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"vip"}`))
	}))
	defer srv.Close()

	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "lookup", Type: domain.NodeFunction, Function: &domain.FunctionConfig{
				ExecutionType: domain.ExecutionHTTP,
				HTTP: &domain.HTTPConfig{
					URL:         srv.URL,
					ResponseMap: map[string]string{"tier": "status"},
				},
				Transitions: []domain.TransitionCondition{
					// Branch driven by the just-fetched variable.
					equation(`{{tier}} == "vip"`, "vip"),
				},
			}},
			{ID: "vip_bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Welcome back!"}},
			{ID: "plain_bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Bye"}},
		},
		Edges: []domain.Edge{
			{Source: "lookup", Target: "vip_bye", SourceHandle: "vip"},
			{Source: "lookup", Target: "plain_bye"},
		},
	}

	// Silent function: transparent hop into the branch target this turn.
	r := e.ExecuteTurn(context.Background(), flow, "lookup", "", domain.Bindings{}, nil)
	if r.Action != domain.ActionEnd || r.Response != "Welcome back!" {
		t.Fatalf("got %+v", r)
	}
	if r.Variables["tier"] != "vip" {
		t.Errorf("tier = %v", r.Variables["tier"])
	}
}

func TestExecuteTurn_FunctionWithSpeechWaits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "lookup", Type: domain.NodeFunction, Function: &domain.FunctionConfig{
				ExecutionType: domain.ExecutionHTTP,
				HTTP:          &domain.HTTPConfig{URL: srv.URL},
				Speech:        "One moment while I check.",
			}},
			{ID: "bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Bye"}},
		},
		Edges: []domain.Edge{{Source: "lookup", Target: "bye"}},
	}

	r := e.ExecuteTurn(context.Background(), flow, "lookup", "", domain.Bindings{}, nil)
	if r.Response != "One moment while I check." || r.Action != domain.ActionSpeak || r.NextNodeID != "bye" {
		t.Fatalf("speaking function must wait a turn before moving: %+v", r)
	}
}

func TestExecuteTurn_FailedFunctionFallsToDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "lookup", Type: domain.NodeFunction, Function: &domain.FunctionConfig{
				ExecutionType: domain.ExecutionHTTP,
				HTTP: &domain.HTTPConfig{
					URL:         srv.URL,
					ResponseMap: map[string]string{"tier": "status"},
				},
				Transitions: []domain.TransitionCondition{
					equation(`{{tier}} exists`, "found"),
				},
			}},
			{ID: "found_bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Found"}},
			{ID: "fallback", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Sorry, try later"}},
		},
		Edges: []domain.Edge{
			{Source: "lookup", Target: "found_bye", SourceHandle: "found"},
			{Source: "lookup", Target: "fallback"},
		},
	}

	r := e.ExecuteTurn(context.Background(), flow, "lookup", "", domain.Bindings{}, nil)
	if r.Response != "Sorry, try later" || r.Action != domain.ActionEnd {
		t.Fatalf("failed function must continue down the default path: %+v", r)
	}
}

func TestExecuteTurn_Transfer(t *testing.T) {
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "handoff", Type: domain.NodeCallTransfer, Transfer: &domain.TransferConfig{
				Destination: "+1{{support_line}}",
				Mode:        domain.TransferWarm,
				Message:     "Connecting you now.",
			}},
		},
	}

	r := e.ExecuteTurn(context.Background(), flow, "handoff", "", domain.Bindings{"support_line": "5550100"}, nil)
	if r.Action != domain.ActionTransfer || r.TransferTo != "+15550100" || r.TransferType != domain.TransferWarm {
		t.Fatalf("got %+v", r)
	}
	if r.Response != "Connecting you now." || r.NextNodeID != "" {
		t.Fatalf("got %+v", r)
	}
}

func TestExecuteTurn_UnrecognizedTypePassesThrough(t *testing.T) {
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "mystery", Type: "hologram"},
			{ID: "bye", Type: domain.NodeEnd, End: &domain.EndConfig{Farewell: "Bye"}},
		},
		Edges: []domain.Edge{{Source: "mystery", Target: "bye"}},
	}

	r := e.ExecuteTurn(context.Background(), flow, "mystery", "", domain.Bindings{}, nil)
	if r.Action != domain.ActionEnd || r.Response != "Bye" {
		t.Fatalf("got %+v", r)
	}

	// Without a default edge the unknown node ends the call.
	flow.Edges = nil
	r = e.ExecuteTurn(context.Background(), flow, "mystery", "", domain.Bindings{}, nil)
	if r.Action != domain.ActionEnd || r.Response != "" {
		t.Fatalf("got %+v", r)
	}
}

func TestExecuteTurn_HopCapOnAuthoredCycle(t *testing.T) {
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "a", Type: domain.NodeSetVariable, SetVariable: &domain.SetVariableConfig{
				Assignments: []domain.Assignment{{Variable: "n", Operation: domain.OpIncrement}},
			}},
			{ID: "b", Type: domain.NodeSetVariable, SetVariable: &domain.SetVariableConfig{
				Assignments: []domain.Assignment{{Variable: "n", Operation: domain.OpIncrement}},
			}},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		},
	}

	r := e.ExecuteTurn(context.Background(), flow, "a", "", domain.Bindings{}, nil)
	if r.Action != domain.ActionEnd || r.Response != FatalApology {
		t.Fatalf("cycle must hit the hop cap and end: %+v", r)
	}
}

func TestExecuteTurn_SilentNodesNeverGatherWithoutTarget(t *testing.T) {
	// A set_variable node with no outgoing edge is terminal by graph
	// design: the result is an end, never a gather with an empty pointer.
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "set", Type: domain.NodeSetVariable, SetVariable: &domain.SetVariableConfig{
				Assignments: []domain.Assignment{{Variable: "x", Operation: domain.OpSet, Value: "1"}},
			}},
		},
	}

	r := e.ExecuteTurn(context.Background(), flow, "set", "", domain.Bindings{}, nil)
	if r.Action == domain.ActionGather {
		t.Fatalf("silent node gathered: %+v", r)
	}
	if r.Action != domain.ActionEnd {
		t.Fatalf("got %+v", r)
	}
}

func TestExecuteTurn_CallerBindingsNotMutated(t *testing.T) {
	e := newTestEngine(nil)
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "set", Type: domain.NodeSetVariable, SetVariable: &domain.SetVariableConfig{
				Assignments: []domain.Assignment{{Variable: "x", Operation: domain.OpSet, Value: "changed"}},
			}},
			{ID: "bye", Type: domain.NodeEnd, End: &domain.EndConfig{}},
		},
		Edges: []domain.Edge{{Source: "set", Target: "bye"}},
	}

	original := domain.Bindings{"x": "original"}
	r := e.ExecuteTurn(context.Background(), flow, "set", "", original, nil)
	if original["x"] != "original" {
		t.Error("caller's bindings were mutated in place")
	}
	if r.Variables["x"] != "changed" {
		t.Errorf("result variables = %v", r.Variables)
	}
}
