package models

import (
	"fmt"
	"strings"
)

// AnalystKind identifies one of the specialized analysis personas that run
// during the fan-out phase. The set is fixed; unknown kinds are rejected at
// configuration time.
type AnalystKind string

const (
	AnalystMarket       AnalystKind = "market"
	AnalystFundamentals AnalystKind = "fundamentals"
	AnalystNews         AnalystKind = "news"
	AnalystSentiment    AnalystKind = "sentiment"
)

// AllAnalysts returns the full analyst roster in canonical order.
func AllAnalysts() []AnalystKind {
	return []AnalystKind{AnalystMarket, AnalystFundamentals, AnalystNews, AnalystSentiment}
}

// ParseAnalystKind converts a user-supplied name into an AnalystKind.
func ParseAnalystKind(s string) (AnalystKind, error) {
	switch AnalystKind(strings.ToLower(strings.TrimSpace(s))) {
	case AnalystMarket:
		return AnalystMarket, nil
	case AnalystFundamentals:
		return AnalystFundamentals, nil
	case AnalystNews:
		return AnalystNews, nil
	case AnalystSentiment:
		return AnalystSentiment, nil
	default:
		return "", fmt.Errorf("unknown analyst kind %q", s)
	}
}

// Speaker identifies a debate participant.
type Speaker string

const (
	// Research debate.
	SpeakerBull Speaker = "bull"
	SpeakerBear Speaker = "bear"

	// Risk debate.
	SpeakerAggressive   Speaker = "aggressive"
	SpeakerConservative Speaker = "conservative"
	SpeakerNeutral      Speaker = "neutral"
)
