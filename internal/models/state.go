package models

import (
	"time"

	"github.com/google/uuid"
)

// DebateTurn is one speaker's recorded argument in a debate transcript.
type DebateTurn struct {
	Speaker  Speaker `json:"speaker"`
	Argument string  `json:"argument"`
}

// DebateState holds the transcript and progress of one bounded debate loop.
// RoundCount increments by exactly one per completed exchange and never
// exceeds the stage's configured round limit.
type DebateState struct {
	Transcript []DebateTurn `json:"transcript"`
	RoundCount int          `json:"round_count"`
	Consensus  string       `json:"consensus"`
}

// History renders the transcript as labeled lines, the form debate agents
// receive as conversational context.
func (d *DebateState) History() string {
	var b []byte
	for i, turn := range d.Transcript {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, string(turn.Speaker)...)
		b = append(b, ": "...)
		b = append(b, turn.Argument...)
	}
	return string(b)
}

// Clone returns a deep copy so snapshot readers never alias the live
// transcript slice.
func (d *DebateState) Clone() DebateState {
	cp := DebateState{
		Transcript: make([]DebateTurn, len(d.Transcript)),
		RoundCount: d.RoundCount,
		Consensus:  d.Consensus,
	}
	copy(cp.Transcript, d.Transcript)
	return cp
}

// AnalysisState is the single shared state object for one run. Concurrent
// analyst tasks never touch it directly; they produce patches that a single
// merge step applies after the join barrier.
type AnalysisState struct {
	RunID    string `json:"run_id"`
	Subject  string `json:"subject"`
	AsOfDate string `json:"as_of_date"`

	AnalystReports map[AnalystKind]string `json:"analyst_reports"`

	ResearchDebate DebateState `json:"research_debate"`
	RiskDebate     DebateState `json:"risk_debate"`

	InvestmentPlan string `json:"investment_plan"`
	TraderPlan     string `json:"trader_plan"`

	FinalDecision *FinalDecision `json:"final_decision,omitempty"`

	// Best-effort enrichment gathered before fan-out.
	MarketContext string   `json:"market_context,omitempty"`
	PastMemories  []string `json:"past_memories,omitempty"`

	Errors []RunError `json:"errors"`
}

// NewAnalysisState creates a fresh state for one (subject, as_of_date) run.
func NewAnalysisState(subject string, asOf time.Time) *AnalysisState {
	return &AnalysisState{
		RunID:          uuid.NewString(),
		Subject:        subject,
		AsOfDate:       asOf.Format("2006-01-02"),
		AnalystReports: make(map[AnalystKind]string),
	}
}

// Clone returns a deep copy of the state. Snapshots handed to concurrent
// tasks are clones, so no task ever observes a partially merged state.
func (s *AnalysisState) Clone() *AnalysisState {
	cp := *s
	cp.AnalystReports = make(map[AnalystKind]string, len(s.AnalystReports))
	for k, v := range s.AnalystReports {
		cp.AnalystReports[k] = v
	}
	cp.ResearchDebate = s.ResearchDebate.Clone()
	cp.RiskDebate = s.RiskDebate.Clone()
	if s.FinalDecision != nil {
		d := *s.FinalDecision
		if s.FinalDecision.TargetPrice != nil {
			tp := *s.FinalDecision.TargetPrice
			d.TargetPrice = &tp
		}
		cp.FinalDecision = &d
	}
	cp.PastMemories = append([]string(nil), s.PastMemories...)
	cp.Errors = append([]RunError(nil), s.Errors...)
	return &cp
}
