// Package graph contains the orchestration engine: a static execution plan
// built from the run configuration, a pure round-robin debate router, a
// bounded debate coordinator, and the top-level executor state machine.
package graph

import (
	"time"

	"github.com/irwinb/tradecouncil/internal/models"
)

// Stage is one node in the executor's top-level state machine.
type Stage string

const (
	StageConfigure      Stage = "configure"
	StageFanout         Stage = "fanout"
	StageResearchDebate Stage = "research_debate"
	StageSynthesizePlan Stage = "synthesize_plan"
	StageRiskDebate     Stage = "risk_debate"
	StageFinalDecision  Stage = "final_decision"
	StageDone           Stage = "done"
)

// Agent personas. Prompt content lives with the invoker; the plan only
// carries the persona name.
const (
	PersonaMarketAnalyst       = "market analyst"
	PersonaFundamentalsAnalyst = "fundamentals analyst"
	PersonaNewsAnalyst         = "news analyst"
	PersonaSentimentAnalyst    = "sentiment analyst"
	PersonaBullResearcher      = "bull researcher"
	PersonaBearResearcher      = "bear researcher"
	PersonaResearchManager     = "research manager"
	PersonaPortfolioStrategist = "portfolio strategist"
	PersonaTrader              = "trader"
	PersonaAggressiveAnalyst   = "aggressive risk analyst"
	PersonaConservativeAnalyst = "conservative risk analyst"
	PersonaNeutralAnalyst      = "neutral risk analyst"
	PersonaRiskManager         = "risk manager"
	PersonaPortfolioManager    = "portfolio manager"
)

// RunConfig is the validated input for one run.
type RunConfig struct {
	Subject  string
	AsOfDate time.Time

	// Segment classifies the subject's market segment; some analysts can be
	// disabled per segment when an upstream data source does not cover it.
	Segment string

	SelectedAnalysts []models.AnalystKind

	MaxDebateRounds       int
	MaxRiskRounds         int
	MaxRecurLimit         int
	DegradeOnAgentFailure bool

	// RunDeadline bounds the whole run; zero means no deadline.
	RunDeadline time.Duration

	// DisabledAnalysts maps a segment name to analyst kinds that must not be
	// selected for subjects in that segment.
	DisabledAnalysts map[string][]models.AnalystKind

	// MarketContext is optional pre-fetched market data threaded into every
	// agent's input.
	MarketContext string

	// MemoryTopN is how many past situations to recall before fan-out.
	MemoryTopN int
}

// AnalystTask describes one fan-out task.
type AnalystTask struct {
	Kind    models.AnalystKind
	Persona string
}

// DebateSpec describes one bounded debate stage.
type DebateSpec struct {
	Stage        Stage
	Speakers     []models.Speaker
	Personas     map[models.Speaker]string
	MaxRounds    int
	JudgePersona string
}

// SynthesisTask describes one sequential synthesis or decision step.
type SynthesisTask struct {
	Name    string
	Persona string
}

// Plan is the static, ordered execution plan for one run. It is resolved
// once from the configuration; the executor never consults the config again.
type Plan struct {
	Subject  string
	AsOfDate time.Time

	Analysts []AnalystTask
	Research DebateSpec
	Risk     DebateSpec

	// Synthesis runs in order between the two debates: investment plan,
	// then trader plan.
	Synthesis []SynthesisTask
	Decision  SynthesisTask

	MaxRecurLimit         int
	DegradeOnAgentFailure bool
	Deadline              time.Duration

	MarketContext string
	MemoryTopN    int
}

var analystPersonas = map[models.AnalystKind]string{
	models.AnalystMarket:       PersonaMarketAnalyst,
	models.AnalystFundamentals: PersonaFundamentalsAnalyst,
	models.AnalystNews:         PersonaNewsAnalyst,
	models.AnalystSentiment:    PersonaSentimentAnalyst,
}

// BuildPlan validates the configuration and resolves it into a Plan.
// Validation failures are ConfigurationError; nothing is scheduled until
// the whole plan is valid.
func BuildPlan(cfg RunConfig) (*Plan, error) {
	confErr := func(format string, args ...any) error {
		return models.NewRunError(string(StageConfigure), models.ErrConfiguration, format, args...)
	}

	if cfg.Subject == "" {
		return nil, confErr("subject is required")
	}
	if cfg.AsOfDate.IsZero() {
		return nil, confErr("as-of date is required")
	}
	if len(cfg.SelectedAnalysts) == 0 {
		return nil, confErr("at least one analyst must be selected")
	}
	if cfg.MaxDebateRounds < 0 {
		return nil, confErr("max debate rounds must be >= 0, got %d", cfg.MaxDebateRounds)
	}
	if cfg.MaxRiskRounds < 0 {
		return nil, confErr("max risk rounds must be >= 0, got %d", cfg.MaxRiskRounds)
	}
	if cfg.MaxRecurLimit <= 0 {
		return nil, confErr("max recursion limit must be > 0, got %d", cfg.MaxRecurLimit)
	}

	disabled := map[models.AnalystKind]bool{}
	for _, kind := range cfg.DisabledAnalysts[cfg.Segment] {
		disabled[kind] = true
	}

	seen := map[models.AnalystKind]bool{}
	tasks := make([]AnalystTask, 0, len(cfg.SelectedAnalysts))
	for _, kind := range cfg.SelectedAnalysts {
		persona, ok := analystPersonas[kind]
		if !ok {
			return nil, confErr("unknown analyst kind %q", kind)
		}
		if seen[kind] {
			return nil, confErr("analyst %q selected twice", kind)
		}
		if disabled[kind] {
			return nil, confErr("analyst %q is not available for segment %q", kind, cfg.Segment)
		}
		seen[kind] = true
		tasks = append(tasks, AnalystTask{Kind: kind, Persona: persona})
	}

	return &Plan{
		Subject:  cfg.Subject,
		AsOfDate: cfg.AsOfDate,
		Analysts: tasks,
		Research: DebateSpec{
			Stage:    StageResearchDebate,
			Speakers: []models.Speaker{models.SpeakerBull, models.SpeakerBear},
			Personas: map[models.Speaker]string{
				models.SpeakerBull: PersonaBullResearcher,
				models.SpeakerBear: PersonaBearResearcher,
			},
			MaxRounds:    cfg.MaxDebateRounds,
			JudgePersona: PersonaResearchManager,
		},
		Risk: DebateSpec{
			Stage: StageRiskDebate,
			Speakers: []models.Speaker{
				models.SpeakerAggressive,
				models.SpeakerConservative,
				models.SpeakerNeutral,
			},
			Personas: map[models.Speaker]string{
				models.SpeakerAggressive:   PersonaAggressiveAnalyst,
				models.SpeakerConservative: PersonaConservativeAnalyst,
				models.SpeakerNeutral:      PersonaNeutralAnalyst,
			},
			MaxRounds:    cfg.MaxRiskRounds,
			JudgePersona: PersonaRiskManager,
		},
		Synthesis: []SynthesisTask{
			{Name: "investment_plan", Persona: PersonaPortfolioStrategist},
			{Name: "trader_plan", Persona: PersonaTrader},
		},
		Decision:              SynthesisTask{Name: "final_decision", Persona: PersonaPortfolioManager},
		MaxRecurLimit:         cfg.MaxRecurLimit,
		DegradeOnAgentFailure: cfg.DegradeOnAgentFailure,
		Deadline:              cfg.RunDeadline,
		MarketContext:         cfg.MarketContext,
		MemoryTopN:            cfg.MemoryTopN,
	}, nil
}
