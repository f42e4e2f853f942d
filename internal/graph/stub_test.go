package graph

import (
	"context"
	"sync"

	"github.com/irwinb/tradecouncil/internal/models"
)

// neutralText is deliberately hold-flavored so the extractor settles on a
// hold action without a parse error.
const neutralText = "The outlook is neutral. Recommend to hold and wait for clearer signals."

// stubInvoker is a deterministic AgentInvoker for engine tests.
type stubInvoker struct {
	mu    sync.Mutex
	calls []string

	// failPersonas makes specific personas return an error.
	failPersonas map[string]error

	// blockPersonas makes specific personas block until the context is done.
	blockPersonas map[string]bool

	// respond overrides the canned response when set.
	respond func(stage Stage, persona string, snap *models.AnalysisState) string
}

func (s *stubInvoker) Invoke(ctx context.Context, stage Stage, persona string, snap *models.AnalysisState) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, persona)
	blocked := s.blockPersonas[persona]
	err := s.failPersonas[persona]
	s.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	if s.respond != nil {
		return s.respond(stage, persona, snap), nil
	}
	return neutralText, nil
}

func (s *stubInvoker) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubInvoker) callsTo(persona string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == persona {
			n++
		}
	}
	return n
}
