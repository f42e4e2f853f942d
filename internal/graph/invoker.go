package graph

import (
	"context"

	"github.com/irwinb/tradecouncil/internal/models"
)

// AgentInvoker is the external collaborator that performs one agent's work.
// The snapshot is a private copy; implementations may read it freely but
// writes never reach the shared state. Network I/O, retries, and backoff
// are owned by the implementation, not by the engine.
type AgentInvoker interface {
	Invoke(ctx context.Context, stage Stage, persona string, snapshot *models.AnalysisState) (string, error)
}

// InvokerFunc adapts a function to the AgentInvoker interface.
type InvokerFunc func(ctx context.Context, stage Stage, persona string, snapshot *models.AnalysisState) (string, error)

func (f InvokerFunc) Invoke(ctx context.Context, stage Stage, persona string, snapshot *models.AnalysisState) (string, error) {
	return f(ctx, stage, persona, snapshot)
}
