package graph

import (
	"context"
	"log"
	"strings"

	"github.com/irwinb/tradecouncil/internal/models"
	"github.com/irwinb/tradecouncil/internal/state"
)

// DebateCoordinator drives one bounded, strictly sequential debate loop.
// Each round depends causally on the previous round's transcript, so the
// loop is never parallelized. Every exchange draws from the shared step
// budget; a router that never terminates therefore cannot hang the run.
type DebateCoordinator struct {
	invoker AgentInvoker
	router  RouterFunc
	budget  *StepBudget
	degrade bool
}

// NewDebateCoordinator wires a coordinator to the shared step budget.
func NewDebateCoordinator(invoker AgentInvoker, router RouterFunc, budget *StepBudget, degrade bool) *DebateCoordinator {
	return &DebateCoordinator{invoker: invoker, router: router, budget: budget, degrade: degrade}
}

// Run executes the debate described by spec against a private snapshot and
// returns the resulting state patch. With MaxRounds = 0 it performs zero
// exchanges and goes straight to synthesis from an empty transcript. The
// returned patch is valid even when err is non-nil, so partial transcripts
// survive an abort.
func (c *DebateCoordinator) Run(ctx context.Context, spec DebateSpec, snap *models.AnalysisState) (state.Patch, error) {
	debate := c.debateFor(spec, snap).Clone()
	patch := state.Patch{Stage: string(spec.Stage)}

	for {
		turn := c.router(debate.RoundCount, spec.MaxRounds, spec.Speakers)
		if turn.Terminate {
			break
		}
		if err := c.budget.Step(spec.Stage); err != nil {
			c.setDebate(&patch, spec, &debate)
			return patch, err
		}

		c.applyDebate(spec, snap, &debate)
		persona := spec.Personas[turn.Speaker]
		argument, err := c.invoker.Invoke(ctx, spec.Stage, persona, snap)
		if err != nil {
			re := models.NewRunError(string(spec.Stage), models.ErrAgentInvocation,
				"%s: %v", persona, err)
			if !c.degrade {
				c.setDebate(&patch, spec, &debate)
				return patch, re
			}
			log.Printf("[Debate] %s turn failed, continuing degraded: %v", persona, err)
			patch.Errors = append(patch.Errors, re)
			argument = "(no argument provided)"
		}
		if strings.TrimSpace(argument) == "" {
			argument = "(no argument provided)"
		}

		debate.Transcript = append(debate.Transcript, models.DebateTurn{
			Speaker:  turn.Speaker,
			Argument: argument,
		})
		debate.RoundCount++
	}

	c.applyDebate(spec, snap, &debate)
	consensus, err := c.invoker.Invoke(ctx, spec.Stage, spec.JudgePersona, snap)
	if err != nil {
		re := models.NewRunError(string(spec.Stage), models.ErrAgentInvocation,
			"%s: %v", spec.JudgePersona, err)
		if !c.degrade {
			c.setDebate(&patch, spec, &debate)
			return patch, re
		}
		log.Printf("[Debate] %s synthesis failed, continuing degraded: %v", spec.JudgePersona, err)
		patch.Errors = append(patch.Errors, re)
		consensus = ""
	}
	debate.Consensus = consensus

	c.setDebate(&patch, spec, &debate)
	return patch, nil
}

func (c *DebateCoordinator) debateFor(spec DebateSpec, snap *models.AnalysisState) *models.DebateState {
	if spec.Stage == StageRiskDebate {
		return &snap.RiskDebate
	}
	return &snap.ResearchDebate
}

// applyDebate keeps the private snapshot current so each turn's agent sees
// the transcript so far.
func (c *DebateCoordinator) applyDebate(spec DebateSpec, snap *models.AnalysisState, debate *models.DebateState) {
	if spec.Stage == StageRiskDebate {
		snap.RiskDebate = debate.Clone()
		return
	}
	snap.ResearchDebate = debate.Clone()
}

func (c *DebateCoordinator) setDebate(patch *state.Patch, spec DebateSpec, debate *models.DebateState) {
	if spec.Stage == StageRiskDebate {
		patch.RiskDebate = debate
		return
	}
	patch.ResearchDebate = debate
}
