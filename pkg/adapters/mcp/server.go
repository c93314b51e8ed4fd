// Package mcp exposes the call engine as an MCP server, so agent tooling
// can place and drive calls as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	voiceflow "github.com/Aryanpatel2001/VoiceFlow-sub001"
)

// TurnOutput is the structured result of a call tool: what to speak and
// what the call does next.
type TurnOutput struct {
	SessionID  string `json:"session_id" jsonschema_description:"The call session ID"`
	Response   string `json:"response" jsonschema_description:"What the agent speaks next"`
	Action     string `json:"action" jsonschema_description:"speak, gather, transfer, or end"`
	TransferTo string `json:"transfer_to,omitempty" jsonschema_description:"Transfer destination, when action is transfer"`
	Ended      bool   `json:"ended" jsonschema_description:"True once the call hung up"`
}

// Server wraps the engine and exposes it over MCP.
type Server struct {
	engine    *voiceflow.Engine
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the engine.
func NewServer(engine *voiceflow.Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("voiceflow-mcp", strings.TrimSpace(voiceflow.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}
	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_call",
		mcp.WithDescription("Start a new call on a flow. Returns the opening line and a session ID."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The ID of the flow to run")),
		mcp.WithOutputSchema[TurnOutput](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartCall))

	turnTool := mcp.NewTool("send_utterance",
		mcp.WithDescription("Send one caller utterance into a live call. Returns the agent's reply."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The call session ID")),
		mcp.WithString("utterance", mcp.Required(), mcp.Description("What the caller said")),
		mcp.WithOutputSchema[TurnOutput](),
	)
	s.mcpServer.AddTool(turnTool, mcp.NewStructuredToolHandler(s.handleTurn))

	endTool := mcp.NewTool("end_call",
		mcp.WithDescription("Hang up and discard a call session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The call session ID")),
	)
	s.mcpServer.AddTool(endTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := request.GetString("session_id", "")
		if err := s.engine.EndCall(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("end call failed: %v", err)), nil
		}
		return mcp.NewToolResultText("call ended"), nil
	})

	inspectTool := mcp.NewTool("inspect_flow",
		mcp.WithDescription("Get a flow's full node and edge definition for introspection."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("The ID of the flow")),
	)
	s.mcpServer.AddTool(inspectTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flow, err := s.engine.Loader().GetFlow(ctx, request.GetString("flow_id", ""))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		data, _ := json.Marshal(flow)
		return mcp.NewToolResultText(string(data)), nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("voiceflow://flows", "Available Call Flows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.engine.Loader().ListFlows(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing flows: %w", err)
		}
		data, _ := json.Marshal(ids)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "voiceflow://flows",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleStartCall(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnOutput, error) {
	flowID, _ := args["flow_id"].(string)
	sess, result, err := s.engine.StartCall(ctx, flowID)
	if err != nil {
		return TurnOutput{}, fmt.Errorf("start call failed: %w", err)
	}
	return TurnOutput{
		SessionID:  sess.ID,
		Response:   result.Response,
		Action:     result.Action,
		TransferTo: result.TransferTo,
		Ended:      sess.Ended,
	}, nil
}

func (s *Server) handleTurn(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnOutput, error) {
	sessionID, _ := args["session_id"].(string)
	utterance, _ := args["utterance"].(string)

	sess, result, err := s.engine.Turn(ctx, sessionID, utterance)
	if err != nil {
		return TurnOutput{}, fmt.Errorf("turn failed: %w", err)
	}
	return TurnOutput{
		SessionID:  sess.ID,
		Response:   result.Response,
		Action:     result.Action,
		TransferTo: result.TransferTo,
		Ended:      sess.Ended,
	}, nil
}
