package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/irwinb/tradecouncil/internal/models"
	"github.com/irwinb/tradecouncil/internal/storage/sqlite"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	decisionStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(1, 2)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2).
			Width(80)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func renderBanner(subject, date string) string {
	return titleStyle.Render(fmt.Sprintf("tradecouncil · %s · %s", subject, date))
}

func renderResult(result *models.RunResult) string {
	st := result.State
	var b strings.Builder

	if d := st.FinalDecision; d != nil {
		lines := []string{
			fmt.Sprintf("Action:      %s", strings.ToUpper(string(d.Action))),
			fmt.Sprintf("Confidence:  %.2f", d.Confidence),
			fmt.Sprintf("Risk score:  %.2f", d.RiskScore),
		}
		if d.TargetPrice != nil {
			lines = append(lines, fmt.Sprintf("Target:      %.2f", *d.TargetPrice))
		}
		b.WriteString(decisionStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	if st.ResearchDebate.RoundCount > 0 || st.ResearchDebate.Consensus != "" {
		b.WriteString(sectionStyle.Render(fmt.Sprintf(
			"Research debate (%d rounds)\n\n%s", st.ResearchDebate.RoundCount,
			truncate(st.ResearchDebate.Consensus, 400))))
		b.WriteString("\n")
	}
	if st.RiskDebate.RoundCount > 0 || st.RiskDebate.Consensus != "" {
		b.WriteString(sectionStyle.Render(fmt.Sprintf(
			"Risk debate (%d rounds)\n\n%s", st.RiskDebate.RoundCount,
			truncate(st.RiskDebate.Consensus, 400))))
		b.WriteString("\n")
	}

	if len(st.Errors) > 0 {
		var lines []string
		for _, e := range st.Errors {
			lines = append(lines, "- "+e.Error())
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("%d error(s):", len(st.Errors))))
		b.WriteString("\n" + strings.Join(lines, "\n") + "\n")
	}

	b.WriteString(dimStyle.Render("run " + result.RunID))
	return b.String()
}

func renderHistory(runs []sqlite.RunRecord) {
	if len(runs) == 0 {
		fmt.Println(dimStyle.Render("no runs recorded yet"))
		return
	}
	for _, rec := range runs {
		status := "ok"
		if !rec.Succeeded {
			status = "failed"
		}
		fmt.Printf("%s  %-8s %-12s %-5s conf=%.2f risk=%.2f [%s]\n",
			rec.CreatedAt, rec.Subject, rec.AsOfDate,
			strings.ToUpper(rec.Action), rec.Confidence, rec.RiskScore, status)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
