// Package memory defines the call contract for the reflection memory
// service: a similarity-searchable store of past situations and outcomes.
// The backend (embeddings, vector search) is external; the engine only
// consumes this interface, and both calls are best-effort enrichments.
package memory

import "context"

// Record is one recalled past situation with its recorded outcome.
type Record struct {
	Situation string  `json:"situation"`
	Outcome   string  `json:"outcome"`
	Score     float64 `json:"score"`
}

// ReflectionMemory is the client contract. Search failures and Store
// failures must never affect the run's success or failure.
type ReflectionMemory interface {
	Search(ctx context.Context, query string, topN int) ([]Record, error)
	Store(ctx context.Context, situation, outcome string) error
}
