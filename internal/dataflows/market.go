package dataflows

import (
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// GetQuote fetches the current Yahoo Finance quote for a symbol.
func GetQuote(symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	return &Quote{
		Symbol:    symbol,
		Open:      decimal.NewFromFloat(q.RegularMarketOpen),
		High:      decimal.NewFromFloat(q.RegularMarketDayHigh),
		Low:       decimal.NewFromFloat(q.RegularMarketDayLow),
		Price:     decimal.NewFromFloat(q.RegularMarketPrice),
		Volume:    int64(q.RegularMarketVolume),
		Timestamp: time.Now(),
	}, nil
}

// FormatSnapshot renders a quote as the text block handed to analysts.
func (q *Quote) FormatSnapshot() string {
	return fmt.Sprintf("%s  price=%s open=%s high=%s low=%s volume=%d",
		q.Symbol, q.Price.StringFixed(2), q.Open.StringFixed(2),
		q.High.StringFixed(2), q.Low.StringFixed(2), q.Volume)
}
