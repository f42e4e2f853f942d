// Package state implements the shared analysis state for one run as a
// snapshot-then-patch store: concurrent tasks read immutable snapshots and
// return isolated patches, and a single merge step applies them after the
// join barrier. Overlapping writes are a wiring defect and fail fast.
package state

import (
	"github.com/irwinb/tradecouncil/internal/models"
)

// Patch is one task's isolated state update. Each field a patch sets must
// be owned by exactly one task per run.
type Patch struct {
	Stage string

	Reports map[models.AnalystKind]string

	ResearchDebate *models.DebateState
	RiskDebate     *models.DebateState

	InvestmentPlan *string
	TraderPlan     *string

	Decision *models.FinalDecision

	// Recoverable errors observed by the task; always appended, never merged.
	Errors []models.RunError
}

// Store owns the live AnalysisState. It is not itself safe for concurrent
// use; the executor is the only writer and merges patches single-threaded
// after the join barrier.
type Store struct {
	st *models.AnalysisState
}

// NewStore wraps a freshly created state.
func NewStore(st *models.AnalysisState) *Store {
	return &Store{st: st}
}

// Snapshot returns a deep copy safe to hand to concurrent tasks.
func (s *Store) Snapshot() *models.AnalysisState {
	return s.st.Clone()
}

// State returns the live state for the final handoff to the caller.
func (s *Store) State() *models.AnalysisState {
	return s.st
}

// AppendError records a recoverable error directly, outside patch merging.
func (s *Store) AppendError(e models.RunError) {
	s.st.Errors = append(s.st.Errors, e)
}

// Merge applies patches in order. A report key or decision written twice in
// one run violates the single-writer invariant and returns a StateCorruption
// error; nothing silently overwrites.
func (s *Store) Merge(patches ...Patch) error {
	for _, p := range patches {
		if err := s.apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) apply(p Patch) error {
	for kind, report := range p.Reports {
		if _, exists := s.st.AnalystReports[kind]; exists {
			return models.NewRunError(p.Stage, models.ErrStateCorruption,
				"analyst report %q written twice", kind)
		}
		s.st.AnalystReports[kind] = report
	}

	if p.ResearchDebate != nil {
		if p.ResearchDebate.RoundCount < s.st.ResearchDebate.RoundCount {
			return models.NewRunError(p.Stage, models.ErrStateCorruption,
				"research debate round count moved backwards (%d -> %d)",
				s.st.ResearchDebate.RoundCount, p.ResearchDebate.RoundCount)
		}
		s.st.ResearchDebate = p.ResearchDebate.Clone()
	}
	if p.RiskDebate != nil {
		if p.RiskDebate.RoundCount < s.st.RiskDebate.RoundCount {
			return models.NewRunError(p.Stage, models.ErrStateCorruption,
				"risk debate round count moved backwards (%d -> %d)",
				s.st.RiskDebate.RoundCount, p.RiskDebate.RoundCount)
		}
		s.st.RiskDebate = p.RiskDebate.Clone()
	}

	if p.InvestmentPlan != nil {
		if s.st.InvestmentPlan != "" {
			return models.NewRunError(p.Stage, models.ErrStateCorruption, "investment plan written twice")
		}
		s.st.InvestmentPlan = *p.InvestmentPlan
	}
	if p.TraderPlan != nil {
		if s.st.TraderPlan != "" {
			return models.NewRunError(p.Stage, models.ErrStateCorruption, "trader plan written twice")
		}
		s.st.TraderPlan = *p.TraderPlan
	}

	if p.Decision != nil {
		if s.st.FinalDecision != nil {
			return models.NewRunError(p.Stage, models.ErrStateCorruption, "final decision written twice")
		}
		d := *p.Decision
		s.st.FinalDecision = &d
	}

	s.st.Errors = append(s.st.Errors, p.Errors...)
	return nil
}
