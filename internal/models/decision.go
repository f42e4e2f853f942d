package models

// Action is the terminal trading recommendation.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionHold Action = "hold"
	ActionSell Action = "sell"
)

// FinalDecision is the structured decision record extracted from the final
// free-form decision text. It is populated exactly once, after the risk
// debate terminates.
type FinalDecision struct {
	Action      Action   `json:"action"`
	Confidence  float64  `json:"confidence"`
	RiskScore   float64  `json:"risk_score"`
	TargetPrice *float64 `json:"target_price,omitempty"`
	Reasoning   string   `json:"reasoning"`
}

// RunResult is what every run returns, aborted or not. Success is
// distinguished by FinalDecision presence on the state and a nil Fatal.
type RunResult struct {
	RunID string         `json:"run_id"`
	State *AnalysisState `json:"state"`
	Fatal *RunError      `json:"fatal,omitempty"`
}

// Succeeded reports whether the run reached a final decision without a
// fatal error.
func (r *RunResult) Succeeded() bool {
	return r.Fatal == nil && r.State != nil && r.State.FinalDecision != nil
}
