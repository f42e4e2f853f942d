package graph

import "github.com/irwinb/tradecouncil/internal/models"

// StepBudget is the run-scoped hard cap on orchestration steps. Every stage
// transition and every debate exchange draws from it, so a routing defect
// that loops forever still terminates with ExecutionExhausted.
type StepBudget struct {
	limit int
	used  int
}

// NewStepBudget creates a budget with the given limit.
func NewStepBudget(limit int) *StepBudget {
	return &StepBudget{limit: limit}
}

// Step consumes one step, returning ExecutionExhausted once the limit is
// exceeded.
func (b *StepBudget) Step(stage Stage) error {
	b.used++
	if b.used > b.limit {
		return models.NewRunError(string(stage), models.ErrExecutionExhausted,
			"step budget of %d exceeded", b.limit)
	}
	return nil
}

// Used reports how many steps have been consumed.
func (b *StepBudget) Used() int {
	return b.used
}
