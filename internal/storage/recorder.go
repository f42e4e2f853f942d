// Package storage writes per-run markdown reports under
// results/<subject>/<date>/.
package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/irwinb/tradecouncil/internal/models"
)

// WriteRunReports renders the run's reports, transcripts, and decision to
// markdown files. Best effort: a failure is logged and returned but callers
// typically ignore it.
func WriteRunReports(resultsDir string, st *models.AnalysisState) error {
	dir := filepath.Join(resultsDir, st.Subject, st.AsOfDate)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create results dir %s: %w", dir, err)
	}

	for kind, report := range st.AnalystReports {
		name := fmt.Sprintf("%s_report.md", kind)
		if err := writeFile(dir, name, report); err != nil {
			return err
		}
	}

	if err := writeFile(dir, "research_debate.md", renderDebate(&st.ResearchDebate)); err != nil {
		return err
	}
	if err := writeFile(dir, "risk_debate.md", renderDebate(&st.RiskDebate)); err != nil {
		return err
	}
	if st.InvestmentPlan != "" {
		if err := writeFile(dir, "investment_plan.md", st.InvestmentPlan); err != nil {
			return err
		}
	}
	if st.TraderPlan != "" {
		if err := writeFile(dir, "trader_plan.md", st.TraderPlan); err != nil {
			return err
		}
	}
	if d := st.FinalDecision; d != nil {
		if err := writeFile(dir, "final_decision.md", renderDecision(d)); err != nil {
			return err
		}
	}
	return nil
}

func renderDebate(d *models.DebateState) string {
	var b strings.Builder
	for _, turn := range d.Transcript {
		fmt.Fprintf(&b, "**%s**: %s\n\n", turn.Speaker, turn.Argument)
	}
	if d.Consensus != "" {
		fmt.Fprintf(&b, "---\n\n**Consensus** (after %d rounds): %s\n", d.RoundCount, d.Consensus)
	}
	return b.String()
}

func renderDecision(d *models.FinalDecision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Final Decision\n\n")
	fmt.Fprintf(&b, "- Action: %s\n", d.Action)
	fmt.Fprintf(&b, "- Confidence: %.2f\n", d.Confidence)
	fmt.Fprintf(&b, "- Risk score: %.2f\n", d.RiskScore)
	if d.TargetPrice != nil {
		fmt.Fprintf(&b, "- Target price: %.2f\n", *d.TargetPrice)
	}
	fmt.Fprintf(&b, "\n%s\n", d.Reasoning)
	return b.String()
}

func writeFile(dir, name, content string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("written to: %s", path)
	return nil
}
