package ports

import (
	"context"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// TurnEngine is the stateless execution core. Given the full state of one
// call turn it produces exactly one result; it retains nothing between
// invocations, so one engine instance serves any number of concurrent calls.
// history carries prior turns only: the pending utterance arrives as
// userInput, and the engine adds it to model requests itself.
type TurnEngine interface {
	ExecuteTurn(ctx context.Context, flow *domain.Flow, nodeID, userInput string,
		bindings domain.Bindings, history []domain.Message) domain.TurnResult
}
