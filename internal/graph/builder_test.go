package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/irwinb/tradecouncil/internal/models"
)

func validRunConfig() RunConfig {
	return RunConfig{
		Subject:          "AAPL",
		AsOfDate:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		SelectedAnalysts: []models.AnalystKind{models.AnalystMarket, models.AnalystNews},
		MaxDebateRounds:  2,
		MaxRiskRounds:    1,
		MaxRecurLimit:    100,
	}
}

func TestBuildPlanShape(t *testing.T) {
	plan, err := BuildPlan(validRunConfig())
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	if len(plan.Analysts) != 2 {
		t.Fatalf("expected 2 analyst tasks, got %d", len(plan.Analysts))
	}
	if plan.Analysts[0].Kind != models.AnalystMarket || plan.Analysts[0].Persona != PersonaMarketAnalyst {
		t.Errorf("unexpected first analyst task: %+v", plan.Analysts[0])
	}

	if got := plan.Research.Speakers; len(got) != 2 || got[0] != models.SpeakerBull || got[1] != models.SpeakerBear {
		t.Errorf("unexpected research speakers: %v", got)
	}
	if got := plan.Risk.Speakers; len(got) != 3 {
		t.Errorf("expected 3 risk speakers, got %v", got)
	}
	if plan.Research.JudgePersona != PersonaResearchManager {
		t.Errorf("research judge = %q", plan.Research.JudgePersona)
	}
	if plan.Risk.JudgePersona != PersonaRiskManager {
		t.Errorf("risk judge = %q", plan.Risk.JudgePersona)
	}
	if len(plan.Synthesis) != 2 || plan.Synthesis[0].Name != "investment_plan" || plan.Synthesis[1].Name != "trader_plan" {
		t.Errorf("unexpected synthesis tasks: %+v", plan.Synthesis)
	}
}

func TestBuildPlanValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"empty subject", func(c *RunConfig) { c.Subject = "" }},
		{"zero date", func(c *RunConfig) { c.AsOfDate = time.Time{} }},
		{"no analysts", func(c *RunConfig) { c.SelectedAnalysts = nil }},
		{"unknown analyst", func(c *RunConfig) {
			c.SelectedAnalysts = []models.AnalystKind{models.AnalystKind("quant")}
		}},
		{"duplicate analyst", func(c *RunConfig) {
			c.SelectedAnalysts = []models.AnalystKind{models.AnalystMarket, models.AnalystMarket}
		}},
		{"negative debate rounds", func(c *RunConfig) { c.MaxDebateRounds = -1 }},
		{"negative risk rounds", func(c *RunConfig) { c.MaxRiskRounds = -1 }},
		{"zero recursion limit", func(c *RunConfig) { c.MaxRecurLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRunConfig()
			tt.mutate(&cfg)

			_, err := BuildPlan(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			var re models.RunError
			if !errors.As(err, &re) {
				t.Fatalf("expected RunError, got %T", err)
			}
			if re.Kind != models.ErrConfiguration {
				t.Errorf("kind = %s, want %s", re.Kind, models.ErrConfiguration)
			}
		})
	}
}

func TestBuildPlanSegmentExclusion(t *testing.T) {
	cfg := validRunConfig()
	cfg.Segment = "otc"
	cfg.SelectedAnalysts = []models.AnalystKind{models.AnalystMarket, models.AnalystSentiment}
	cfg.DisabledAnalysts = map[string][]models.AnalystKind{
		"otc": {models.AnalystSentiment},
	}

	_, err := BuildPlan(cfg)
	var re models.RunError
	if !errors.As(err, &re) || re.Kind != models.ErrConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}

	// Same selection is fine for a segment without exclusions.
	cfg.Segment = "nasdaq"
	if _, err := BuildPlan(cfg); err != nil {
		t.Fatalf("unexpected error for allowed segment: %v", err)
	}
}

func TestBuildPlanZeroRoundsAllowed(t *testing.T) {
	cfg := validRunConfig()
	cfg.MaxDebateRounds = 0
	cfg.MaxRiskRounds = 0

	plan, err := BuildPlan(cfg)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if plan.Research.MaxRounds != 0 || plan.Risk.MaxRounds != 0 {
		t.Errorf("round limits not preserved: %d/%d", plan.Research.MaxRounds, plan.Risk.MaxRounds)
	}
}
