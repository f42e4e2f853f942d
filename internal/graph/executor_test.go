package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/irwinb/tradecouncil/internal/memory"
	"github.com/irwinb/tradecouncil/internal/models"
)

func testRunConfig() RunConfig {
	return RunConfig{
		Subject:               "TEST1",
		AsOfDate:              time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		SelectedAnalysts:      []models.AnalystKind{models.AnalystMarket, models.AnalystFundamentals},
		MaxDebateRounds:       1,
		MaxRiskRounds:         1,
		MaxRecurLimit:         100,
		DegradeOnAgentFailure: true,
	}
}

func mustBuildPlan(t *testing.T, cfg RunConfig) *Plan {
	t.Helper()
	plan, err := BuildPlan(cfg)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func TestExecutorEndToEnd(t *testing.T) {
	invoker := &stubInvoker{}
	exec := NewExecutor(mustBuildPlan(t, testRunConfig()), invoker)

	result, err := exec.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Succeeded() {
		t.Fatal("expected a successful run")
	}

	st := result.State
	if st.Subject != "TEST1" || st.AsOfDate != "2024-01-15" {
		t.Errorf("unexpected identity: %s %s", st.Subject, st.AsOfDate)
	}
	if len(st.AnalystReports) != 2 {
		t.Errorf("expected 2 analyst reports, got %d", len(st.AnalystReports))
	}
	if st.ResearchDebate.RoundCount != 1 {
		t.Errorf("research round count = %d, want 1", st.ResearchDebate.RoundCount)
	}
	if st.RiskDebate.RoundCount != 1 {
		t.Errorf("risk round count = %d, want 1", st.RiskDebate.RoundCount)
	}
	if st.InvestmentPlan == "" || st.TraderPlan == "" {
		t.Error("synthesis plans missing")
	}
	if st.FinalDecision.Action != models.ActionHold {
		t.Errorf("action = %s, want hold", st.FinalDecision.Action)
	}
	if len(st.Errors) != 0 {
		t.Errorf("expected no errors, got %+v", st.Errors)
	}
}

func TestExecutorFanoutOrderIndependent(t *testing.T) {
	reference := map[models.AnalystKind]string{}

	for trial := 0; trial < 5; trial++ {
		invoker := &stubInvoker{}
		invoker.respond = func(stage Stage, persona string, snap *models.AnalysisState) string {
			if stage == StageFanout {
				time.Sleep(time.Duration(rand.Intn(4)) * time.Millisecond)
				return "hold report from " + persona
			}
			return neutralText
		}

		cfg := testRunConfig()
		cfg.SelectedAnalysts = models.AllAnalysts()
		result, err := NewExecutor(mustBuildPlan(t, cfg), invoker).Run(context.Background())
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		reports := result.State.AnalystReports
		if len(reports) != 4 {
			t.Fatalf("trial %d: got %d reports", trial, len(reports))
		}
		if trial == 0 {
			reference = reports
			continue
		}
		for kind, want := range reference {
			if reports[kind] != want {
				t.Errorf("trial %d: report for %s diverged", trial, kind)
			}
		}
	}
}

func TestExecutorRoundCountsNeverExceedBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 10; trial++ {
		maxDebate := rng.Intn(11)
		maxRisk := rng.Intn(11)

		var mu sync.Mutex
		violated := ""
		invoker := &stubInvoker{}
		invoker.respond = func(stage Stage, persona string, snap *models.AnalysisState) string {
			mu.Lock()
			defer mu.Unlock()
			if snap.ResearchDebate.RoundCount > maxDebate {
				violated = fmt.Sprintf("research %d > %d", snap.ResearchDebate.RoundCount, maxDebate)
			}
			if snap.RiskDebate.RoundCount > maxRisk {
				violated = fmt.Sprintf("risk %d > %d", snap.RiskDebate.RoundCount, maxRisk)
			}
			return neutralText
		}

		cfg := testRunConfig()
		cfg.MaxDebateRounds = maxDebate
		cfg.MaxRiskRounds = maxRisk
		result, err := NewExecutor(mustBuildPlan(t, cfg), invoker).Run(context.Background())
		if err != nil {
			t.Fatalf("trial %d (%d/%d): %v", trial, maxDebate, maxRisk, err)
		}
		if violated != "" {
			t.Fatalf("trial %d: bound violated during run: %s", trial, violated)
		}
		if got := result.State.ResearchDebate.RoundCount; got != maxDebate {
			t.Errorf("trial %d: research rounds = %d, want %d", trial, got, maxDebate)
		}
		if got := result.State.RiskDebate.RoundCount; got != maxRisk {
			t.Errorf("trial %d: risk rounds = %d, want %d", trial, got, maxRisk)
		}
	}
}

func TestExecutorDeterministicDecision(t *testing.T) {
	run := func() []byte {
		result, err := NewExecutor(mustBuildPlan(t, testRunConfig()), &stubInvoker{}).Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		data, err := json.Marshal(result.State.FinalDecision)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}

	first := run()
	second := run()
	if string(first) != string(second) {
		t.Errorf("decisions differ:\n%s\n%s", first, second)
	}
}

func TestExecutorStepBudgetStopsAdversarialRouter(t *testing.T) {
	cfg := testRunConfig()
	cfg.MaxRecurLimit = 10

	invoker := &stubInvoker{}
	alwaysContinue := func(roundCount, maxRounds int, speakers []models.Speaker) Turn {
		return Turn{Speaker: speakers[0]}
	}

	done := make(chan struct{})
	var result *models.RunResult
	var err error
	go func() {
		result, err = NewExecutor(mustBuildPlan(t, cfg), invoker, WithRouter(alwaysContinue)).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not terminate under adversarial router")
	}

	var re models.RunError
	if !errors.As(err, &re) || re.Kind != models.ErrExecutionExhausted {
		t.Fatalf("expected execution exhausted, got %v", err)
	}
	if result == nil || result.Fatal == nil || result.Fatal.Kind != models.ErrExecutionExhausted {
		t.Error("partial result with the fatal error should still be returned")
	}
	if result.State.FinalDecision != nil {
		t.Error("aborted run must not carry a final decision")
	}
	if invoker.callCount() > cfg.MaxRecurLimit {
		t.Errorf("invoker called %d times, budget was %d", invoker.callCount(), cfg.MaxRecurLimit)
	}
}

func TestExecutorAnalystFailureDegraded(t *testing.T) {
	invoker := &stubInvoker{
		failPersonas: map[string]error{PersonaMarketAnalyst: errors.New("rate limit")},
	}

	result, err := NewExecutor(mustBuildPlan(t, testRunConfig()), invoker).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Succeeded() {
		t.Fatal("degraded run should still succeed")
	}

	st := result.State
	if _, ok := st.AnalystReports[models.AnalystMarket]; ok {
		t.Error("failed analyst's key should be absent")
	}
	if _, ok := st.AnalystReports[models.AnalystFundamentals]; !ok {
		t.Error("healthy analyst's report missing")
	}
	found := false
	for _, e := range st.Errors {
		if e.Kind == models.ErrAgentInvocation {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a recorded invocation error, got %+v", st.Errors)
	}
}

func TestExecutorAnalystFailureFatalWithoutDegrade(t *testing.T) {
	cfg := testRunConfig()
	cfg.DegradeOnAgentFailure = false
	invoker := &stubInvoker{
		failPersonas: map[string]error{PersonaMarketAnalyst: errors.New("rate limit")},
	}

	result, err := NewExecutor(mustBuildPlan(t, cfg), invoker).Run(context.Background())
	var re models.RunError
	if !errors.As(err, &re) || re.Kind != models.ErrAgentInvocation {
		t.Fatalf("expected fatal invocation error, got %v", err)
	}
	if result == nil || result.Succeeded() {
		t.Error("expected a failed partial result")
	}
}

func TestExecutorDeadlineMarksOutstandingAsTimeout(t *testing.T) {
	cfg := testRunConfig()
	cfg.RunDeadline = 50 * time.Millisecond
	invoker := &stubInvoker{
		blockPersonas: map[string]bool{PersonaMarketAnalyst: true},
	}

	result, err := NewExecutor(mustBuildPlan(t, cfg), invoker).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	st := result.State
	if _, ok := st.AnalystReports[models.AnalystMarket]; ok {
		t.Error("timed-out analyst's key should be absent")
	}
	found := false
	for _, e := range st.Errors {
		if e.Kind == models.ErrTimeout {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a timeout error, got %+v", st.Errors)
	}
}

func TestExecutorDeadlineFatalWithoutDegrade(t *testing.T) {
	cfg := testRunConfig()
	cfg.RunDeadline = 50 * time.Millisecond
	cfg.DegradeOnAgentFailure = false
	invoker := &stubInvoker{
		blockPersonas: map[string]bool{PersonaMarketAnalyst: true},
	}

	_, err := NewExecutor(mustBuildPlan(t, cfg), invoker).Run(context.Background())
	var re models.RunError
	if !errors.As(err, &re) || re.Kind != models.ErrTimeout {
		t.Fatalf("expected fatal timeout, got %v", err)
	}
}

func TestExecutorUnparsableDecisionFallsBackToHold(t *testing.T) {
	invoker := &stubInvoker{}
	invoker.respond = func(stage Stage, persona string, snap *models.AnalysisState) string {
		if persona == PersonaPortfolioManager {
			return "asdf123"
		}
		return neutralText
	}

	result, err := NewExecutor(mustBuildPlan(t, testRunConfig()), invoker).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Succeeded() {
		t.Fatal("parse failure must not fail the run")
	}

	d := result.State.FinalDecision
	if d.Action != models.ActionHold || d.Confidence != 0.5 || d.RiskScore != 0.5 {
		t.Errorf("fallback decision = %+v, want hold/0.5/0.5", d)
	}
	parseErrs := 0
	for _, e := range result.State.Errors {
		if e.Kind == models.ErrSignalParse {
			parseErrs++
		}
	}
	if parseErrs != 1 {
		t.Errorf("expected 1 signal parse error, got %d", parseErrs)
	}
}

// stubMemory is an in-process ReflectionMemory for executor tests.
type stubMemory struct {
	mu        sync.Mutex
	records   []memory.Record
	stored    []string
	searchErr error
	storeErr  error
}

func (m *stubMemory) Search(ctx context.Context, query string, topN int) ([]memory.Record, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topN < len(m.records) {
		return m.records[:topN], nil
	}
	return m.records, nil
}

func (m *stubMemory) Store(ctx context.Context, situation, outcome string) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, situation+" -> "+outcome)
	return nil
}

func TestExecutorMemoryEnrichmentAndStore(t *testing.T) {
	mem := &stubMemory{
		records: []memory.Record{
			{Situation: "TEST1 rallied into earnings", Outcome: "hold was right", Score: 0.9},
		},
	}

	cfg := testRunConfig()
	cfg.MemoryTopN = 2
	result, err := NewExecutor(mustBuildPlan(t, cfg), &stubInvoker{}, WithMemory(mem)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.State.PastMemories) != 1 {
		t.Errorf("expected 1 recalled memory, got %d", len(result.State.PastMemories))
	}
	if len(mem.stored) != 1 {
		t.Errorf("expected 1 stored outcome, got %d", len(mem.stored))
	}
}

func TestExecutorMemoryFailuresAreRecoverable(t *testing.T) {
	mem := &stubMemory{
		searchErr: errors.New("service down"),
		storeErr:  errors.New("service down"),
	}

	cfg := testRunConfig()
	cfg.MemoryTopN = 2
	result, err := NewExecutor(mustBuildPlan(t, cfg), &stubInvoker{}, WithMemory(mem)).Run(context.Background())
	if err != nil {
		t.Fatalf("memory failure must not fail the run: %v", err)
	}
	if !result.Succeeded() {
		t.Fatal("expected success despite memory failures")
	}

	memErrs := 0
	for _, e := range result.State.Errors {
		if e.Kind == models.ErrMemory {
			memErrs++
		}
	}
	if memErrs != 2 {
		t.Errorf("expected 2 recorded memory errors, got %d", memErrs)
	}
}
