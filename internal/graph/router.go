package graph

import "github.com/irwinb/tradecouncil/internal/models"

// Turn is the router's verdict for one debate iteration: either the next
// speaker, or termination.
type Turn struct {
	Terminate bool
	Speaker   models.Speaker
}

// RouterFunc decides the next debate turn from the round count alone.
// The production router is NextTurn; tests substitute adversarial ones.
type RouterFunc func(roundCount, maxRounds int, speakers []models.Speaker) Turn

// NextTurn continues while roundCount < maxRounds, picking the next speaker
// by fixed round-robin order, and terminates once the bound is reached,
// regardless of transcript content. Pure; no side effects.
func NextTurn(roundCount, maxRounds int, speakers []models.Speaker) Turn {
	if len(speakers) == 0 || roundCount >= maxRounds {
		return Turn{Terminate: true}
	}
	return Turn{Speaker: speakers[roundCount%len(speakers)]}
}
