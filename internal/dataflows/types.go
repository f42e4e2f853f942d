// Package dataflows fetches the optional external data used to enrich agent
// context before fan-out: a market quote snapshot and a news digest. All of
// it is best-effort; a run proceeds without enrichment when a source fails.
package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time market snapshot for one symbol.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewsItem is one headline from the news feed.
type NewsItem struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
}
