package ports

import (
	"context"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// ResponseSchema asks the model for structured output conforming to a JSON
// schema. Providers that cannot enforce it may ignore it; callers must
// validate the returned text either way.
type ResponseSchema struct {
	Name   string
	Schema map[string]any
}

// CompletionRequest is one chat-completion ask.
type CompletionRequest struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
	System      string
	Messages    []domain.Message
	Schema      *ResponseSchema
}

// CompletionResponse is the raw model reply.
type CompletionResponse struct {
	Text string
}

// CompletionClient is the language-model boundary. Implementations must
// honor context cancellation; the engine bounds every call with a deadline
// so a stalled provider cannot block a live call.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
