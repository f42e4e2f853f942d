package graph

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/irwinb/tradecouncil/internal/memory"
	"github.com/irwinb/tradecouncil/internal/models"
	"github.com/irwinb/tradecouncil/internal/processing"
	"github.com/irwinb/tradecouncil/internal/state"
)

// Executor is the top-level driver. It fans analyst tasks out in parallel,
// joins their patches, runs the two bounded debates through the
// DebateCoordinator, runs the synthesis and decision steps, and enforces
// the step budget and run deadline. Every exit path returns a RunResult;
// the returned error is non-nil only for fatal aborts and is always also
// recorded on the result.
type Executor struct {
	plan      *Plan
	invoker   AgentInvoker
	memory    memory.ReflectionMemory
	extractor *processing.SignalExtractor
	router    RouterFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithMemory attaches a reflection memory client. Without one, recall and
// store are skipped entirely.
func WithMemory(m memory.ReflectionMemory) Option {
	return func(e *Executor) { e.memory = m }
}

// WithRouter overrides the debate router. Primarily for exercising the
// step budget against misbehaving routers.
func WithRouter(r RouterFunc) Option {
	return func(e *Executor) { e.router = r }
}

// NewExecutor builds an executor for one plan.
func NewExecutor(plan *Plan, invoker AgentInvoker, opts ...Option) *Executor {
	e := &Executor{
		plan:      plan,
		invoker:   invoker,
		extractor: processing.NewSignalExtractor(),
		router:    NextTurn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the plan: FANOUT -> RESEARCH_DEBATE -> SYNTHESIZE_PLAN ->
// RISK_DEBATE -> FINAL_DECISION -> DONE. No stage is ever re-entered.
func (e *Executor) Run(ctx context.Context) (*models.RunResult, error) {
	st := models.NewAnalysisState(e.plan.Subject, e.plan.AsOfDate)
	st.MarketContext = e.plan.MarketContext
	store := state.NewStore(st)
	result := &models.RunResult{RunID: st.RunID, State: st}

	if e.plan.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.plan.Deadline)
		defer cancel()
	}

	budget := NewStepBudget(e.plan.MaxRecurLimit)
	coord := NewDebateCoordinator(e.invoker, e.router, budget, e.plan.DegradeOnAgentFailure)

	fail := func(err error) (*models.RunResult, error) {
		re := asRunError(err, StageDone)
		store.AppendError(re)
		result.Fatal = &re
		log.Printf("[Executor] run %s aborted: %v", st.RunID, re)
		return result, re
	}

	e.recallMemories(ctx, store)

	// FANOUT
	if err := budget.Step(StageFanout); err != nil {
		return fail(err)
	}
	patches, fatal := e.fanout(ctx, store.Snapshot())
	if merr := store.Merge(patches...); merr != nil {
		return fail(merr)
	}
	if fatal != nil {
		return fail(*fatal)
	}

	// RESEARCH_DEBATE
	if err := budget.Step(StageResearchDebate); err != nil {
		return fail(err)
	}
	patch, err := coord.Run(ctx, e.plan.Research, store.Snapshot())
	if merr := store.Merge(patch); merr != nil {
		return fail(merr)
	}
	if err != nil {
		return fail(err)
	}

	// SYNTHESIZE_PLAN
	if err := budget.Step(StageSynthesizePlan); err != nil {
		return fail(err)
	}
	for _, task := range e.plan.Synthesis {
		text, err := e.invoke(ctx, StageSynthesizePlan, task.Persona, store)
		if err != nil {
			return fail(err)
		}
		p := state.Patch{Stage: string(StageSynthesizePlan)}
		switch task.Name {
		case "investment_plan":
			p.InvestmentPlan = &text
		case "trader_plan":
			p.TraderPlan = &text
		}
		if merr := store.Merge(p); merr != nil {
			return fail(merr)
		}
	}

	// RISK_DEBATE
	if err := budget.Step(StageRiskDebate); err != nil {
		return fail(err)
	}
	patch, err = coord.Run(ctx, e.plan.Risk, store.Snapshot())
	if merr := store.Merge(patch); merr != nil {
		return fail(merr)
	}
	if err != nil {
		return fail(err)
	}

	// FINAL_DECISION
	if err := budget.Step(StageFinalDecision); err != nil {
		return fail(err)
	}
	decisionText, err := e.invoke(ctx, StageFinalDecision, e.plan.Decision.Persona, store)
	if err != nil {
		return fail(err)
	}
	decision, perr := e.extractor.Extract(decisionText)
	p := state.Patch{Stage: string(StageFinalDecision), Decision: decision}
	if perr != nil {
		p.Errors = append(p.Errors, models.NewRunError(
			string(StageFinalDecision), models.ErrSignalParse, "%v", perr))
	}
	if merr := store.Merge(p); merr != nil {
		return fail(merr)
	}

	if err := budget.Step(StageDone); err != nil {
		return fail(err)
	}
	e.storeMemory(ctx, store)

	log.Printf("[Executor] run %s done: %s %s (%d steps)",
		st.RunID, st.Subject, st.FinalDecision.Action, budget.Used())
	return result, nil
}

// invoke runs one sequential agent call, honoring the degrade switch: a
// failure either aborts the run or is recorded and replaced with empty
// output.
func (e *Executor) invoke(ctx context.Context, stage Stage, persona string, store *state.Store) (string, error) {
	text, err := e.invoker.Invoke(ctx, stage, persona, store.Snapshot())
	if err == nil {
		return text, nil
	}
	re := models.NewRunError(string(stage), invocationKind(err), "%s: %v", persona, err)
	if !e.plan.DegradeOnAgentFailure {
		return "", re
	}
	log.Printf("[Executor] %s failed, continuing degraded: %v", persona, err)
	store.AppendError(re)
	return "", nil
}

// fanout launches one goroutine per selected analyst and waits on the join
// barrier. Each task returns an isolated patch touching only its own report
// key, so completion order cannot change the merged result. When the run
// deadline fires, outstanding tasks are marked failed with TimeoutError and
// the degrade switch decides whether that is fatal.
func (e *Executor) fanout(ctx context.Context, snap *models.AnalysisState) ([]state.Patch, *models.RunError) {
	type outcome struct {
		kind   models.AnalystKind
		report string
		err    error
	}

	results := make(chan outcome, len(e.plan.Analysts))
	for _, task := range e.plan.Analysts {
		go func(t AnalystTask) {
			report, err := e.invoker.Invoke(ctx, StageFanout, t.Persona, snap.Clone())
			results <- outcome{kind: t.Kind, report: report, err: err}
		}(task)
	}

	pending := make(map[models.AnalystKind]bool, len(e.plan.Analysts))
	for _, task := range e.plan.Analysts {
		pending[task.Kind] = true
	}

	var patches []state.Patch
	var fatal *models.RunError

	record := func(kind models.AnalystKind, err error) {
		re := models.NewRunError(string(StageFanout), invocationKind(err), "%s analyst: %v", kind, err)
		if !e.plan.DegradeOnAgentFailure {
			if fatal == nil {
				fatal = &re
			}
			return
		}
		log.Printf("[Executor] %s analyst failed, continuing degraded: %v", kind, err)
		patches = append(patches, state.Patch{Stage: string(StageFanout), Errors: []models.RunError{re}})
	}

	for len(pending) > 0 {
		select {
		case r := <-results:
			if !pending[r.kind] {
				continue
			}
			delete(pending, r.kind)
			if r.err != nil {
				record(r.kind, r.err)
				continue
			}
			patches = append(patches, state.Patch{
				Stage:   string(StageFanout),
				Reports: map[models.AnalystKind]string{r.kind: r.report},
			})
		case <-ctx.Done():
			// Deadline elapsed with tasks outstanding: mark them failed and
			// move on. The goroutines drain into the buffered channel.
			for kind := range pending {
				record(kind, fmt.Errorf("canceled: %w", ctx.Err()))
			}
			pending = map[models.AnalystKind]bool{}
		}
	}

	return patches, fatal
}

func (e *Executor) recallMemories(ctx context.Context, store *state.Store) {
	if e.memory == nil || e.plan.MemoryTopN <= 0 {
		return
	}
	st := store.State()
	query := st.Subject + " " + st.AsOfDate
	records, err := e.memory.Search(ctx, query, e.plan.MemoryTopN)
	if err != nil {
		log.Printf("[Executor] memory recall failed: %v", err)
		store.AppendError(models.NewRunError(string(StageFanout), models.ErrMemory,
			"recall: %v", err))
		return
	}
	for _, rec := range records {
		st.PastMemories = append(st.PastMemories,
			fmt.Sprintf("%s -> %s", rec.Situation, rec.Outcome))
	}
}

func (e *Executor) storeMemory(ctx context.Context, store *state.Store) {
	if e.memory == nil {
		return
	}
	st := store.State()
	if st.FinalDecision == nil {
		return
	}
	situation := fmt.Sprintf("%s as of %s: %s", st.Subject, st.AsOfDate, st.InvestmentPlan)
	outcome := fmt.Sprintf("%s (confidence %.2f, risk %.2f)",
		st.FinalDecision.Action, st.FinalDecision.Confidence, st.FinalDecision.RiskScore)
	if err := e.memory.Store(ctx, situation, outcome); err != nil {
		log.Printf("[Executor] memory store failed: %v", err)
		store.AppendError(models.NewRunError(string(StageDone), models.ErrMemory,
			"store: %v", err))
	}
}

// invocationKind classifies a collaborator failure as timeout or plain
// invocation error.
func invocationKind(err error) models.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ErrTimeout
	}
	return models.ErrAgentInvocation
}

// asRunError normalizes any fatal error into a RunError.
func asRunError(err error, fallback Stage) models.RunError {
	var re models.RunError
	if errors.As(err, &re) {
		return re
	}
	return models.NewRunError(string(fallback), models.ErrAgentInvocation, "%v", err)
}
