// Package trading wires a configured run together: collaborators, execution
// plan, executor, and result persistence.
package trading

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/irwinb/tradecouncil/internal/agents"
	"github.com/irwinb/tradecouncil/internal/config"
	"github.com/irwinb/tradecouncil/internal/dataflows"
	"github.com/irwinb/tradecouncil/internal/graph"
	"github.com/irwinb/tradecouncil/internal/memory"
	"github.com/irwinb/tradecouncil/internal/models"
	"github.com/irwinb/tradecouncil/internal/storage"
	"github.com/irwinb/tradecouncil/internal/storage/sqlite"
)

// Session runs one analysis for a (subject, date) pair.
type Session struct {
	cfg *config.Config
}

// NewSession creates a session over the given configuration.
func NewSession(cfg *config.Config) *Session {
	return &Session{cfg: cfg}
}

// Execute validates the configuration, builds the plan and collaborators,
// runs the executor, and persists the result. The returned RunResult is
// non-nil whenever a run was started, even on abort.
func (s *Session) Execute(ctx context.Context, subject, date, segment string) (*models.RunResult, error) {
	asOf, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (want YYYY-MM-DD): %w", err)
	}
	if err := s.validateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	kinds, err := s.cfg.Analysts()
	if err != nil {
		return nil, err
	}
	disabled, err := s.cfg.DisabledKinds()
	if err != nil {
		return nil, err
	}

	plan, err := graph.BuildPlan(graph.RunConfig{
		Subject:               strings.ToUpper(strings.TrimSpace(subject)),
		AsOfDate:              asOf,
		Segment:               segment,
		SelectedAnalysts:      kinds,
		MaxDebateRounds:       s.cfg.MaxDebateRounds,
		MaxRiskRounds:         s.cfg.MaxRiskRounds,
		MaxRecurLimit:         s.cfg.MaxRecurLimit,
		DegradeOnAgentFailure: s.cfg.DegradeOnAgentFailure,
		RunDeadline:           s.cfg.RunDeadline,
		DisabledAnalysts:      disabled,
		MarketContext:         s.gatherContext(subject),
		MemoryTopN:            s.cfg.MemoryTopN,
	})
	if err != nil {
		return nil, err
	}

	invoker, err := agents.NewChatInvoker(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent invoker: %w", err)
	}

	var opts []graph.Option
	if s.cfg.MemoryServiceURL != "" {
		opts = append(opts, graph.WithMemory(memory.NewHTTPMemory(s.cfg.MemoryServiceURL)))
	}

	result, runErr := graph.NewExecutor(plan, invoker, opts...).Run(ctx)
	if result != nil {
		s.persist(ctx, result)
	}
	return result, runErr
}

// validateConfig checks run-relevant config, including provider credentials.
func (s *Session) validateConfig() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	switch s.cfg.LLMProvider {
	case "openai":
		if s.cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "deepseek":
		if s.cfg.DeepSeekAPIKey == "" {
			return fmt.Errorf("DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	}
	return nil
}

// gatherContext fetches the quote snapshot and news digest. Both are
// best-effort enrichments; failures are logged and skipped.
func (s *Session) gatherContext(subject string) string {
	if !s.cfg.OnlineTools {
		return ""
	}

	var sections []string
	if q, err := dataflows.GetQuote(subject); err != nil {
		log.Printf("[Session] quote fetch failed for %s: %v", subject, err)
	} else {
		sections = append(sections, q.FormatSnapshot())
	}

	if items, err := dataflows.NewNewsClient().Search(subject, 10); err != nil {
		log.Printf("[Session] news fetch failed for %s: %v", subject, err)
	} else if len(items) > 0 {
		sections = append(sections, "Recent headlines:\n"+dataflows.FormatDigest(items))
	}

	return strings.Join(sections, "\n\n")
}

func (s *Session) persist(ctx context.Context, result *models.RunResult) {
	if err := storage.WriteRunReports(s.cfg.ResultsDir, result.State); err != nil {
		log.Printf("[Session] failed to write run reports: %v", err)
	}

	store, err := sqlite.Open(s.cfg.HistoryDBPath)
	if err != nil {
		log.Printf("[Session] failed to open history db: %v", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, result); err != nil {
		log.Printf("[Session] failed to save run history: %v", err)
	}
}
