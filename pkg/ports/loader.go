package ports

import (
	"context"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// FlowLoader retrieves authored flow snapshots. Implementations decide the
// storage (memory, filesystem, relational layer) and must return flows that
// already passed load-time validation.
type FlowLoader interface {
	// GetFlow returns the flow for an ID, or domain.ErrFlowNotFound.
	GetFlow(ctx context.Context, id string) (*domain.Flow, error)

	// ListFlows returns the IDs of every available flow.
	ListFlows(ctx context.Context) ([]string, error)
}
