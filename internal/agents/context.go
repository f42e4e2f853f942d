package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/irwinb/tradecouncil/internal/graph"
	"github.com/irwinb/tradecouncil/internal/models"
)

const userTemplate = `Subject: {subject}
As of: {as_of_date}

{context}

{instruction}`

// buildMessages renders the persona's system prompt plus the stage-specific
// view of the snapshot into chat messages.
func buildMessages(ctx context.Context, stage graph.Stage, persona string, st *models.AnalysisState) ([]*schema.Message, error) {
	system, ok := personaPrompts[persona]
	if !ok {
		return nil, fmt.Errorf("no prompt registered for persona %q", persona)
	}

	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(userTemplate),
	)

	return tpl.Format(ctx, map[string]any{
		"subject":     st.Subject,
		"as_of_date":  st.AsOfDate,
		"context":     stageContext(stage, st),
		"instruction": stageInstruction(stage),
	})
}

// stageContext assembles only what the stage's agents are entitled to see:
// analysts get the raw enrichment, debaters get reports plus the running
// transcript, and later stages get progressively more of the state.
func stageContext(stage graph.Stage, st *models.AnalysisState) string {
	var sections []string
	add := func(title, body string) {
		if strings.TrimSpace(body) != "" {
			sections = append(sections, title+":\n"+body)
		}
	}

	switch stage {
	case graph.StageFanout:
		add("Market data", st.MarketContext)
		add("Lessons from similar past situations", strings.Join(st.PastMemories, "\n"))

	case graph.StageResearchDebate:
		addReports(add, st)
		add("Debate so far", st.ResearchDebate.History())

	case graph.StageSynthesizePlan:
		addReports(add, st)
		add("Research consensus", st.ResearchDebate.Consensus)
		add("Investment plan", st.InvestmentPlan)

	case graph.StageRiskDebate:
		add("Trading plan under review", st.TraderPlan)
		add("Risk debate so far", st.RiskDebate.History())

	case graph.StageFinalDecision:
		addReports(add, st)
		add("Research consensus", st.ResearchDebate.Consensus)
		add("Investment plan", st.InvestmentPlan)
		add("Trading plan", st.TraderPlan)
		add("Risk consensus", st.RiskDebate.Consensus)
	}

	return strings.Join(sections, "\n\n")
}

func addReports(add func(title, body string), st *models.AnalysisState) {
	for _, kind := range models.AllAnalysts() {
		if report, ok := st.AnalystReports[kind]; ok {
			add(fmt.Sprintf("%s report", kind), report)
		}
	}
}

func stageInstruction(stage graph.Stage) string {
	switch stage {
	case graph.StageFanout:
		return "Write your report."
	case graph.StageResearchDebate:
		return "Make your next argument, or your consensus if you are the manager."
	case graph.StageSynthesizePlan:
		return "Produce your plan."
	case graph.StageRiskDebate:
		return "Make your next risk argument, or your consensus if you are the risk manager."
	case graph.StageFinalDecision:
		return "State your final decision."
	default:
		return "Proceed."
	}
}
