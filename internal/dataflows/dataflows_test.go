package dataflows

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatSnapshot(t *testing.T) {
	q := &Quote{
		Symbol:    "AAPL",
		Open:      decimal.NewFromFloat(184.1),
		High:      decimal.NewFromFloat(186.75),
		Low:       decimal.NewFromFloat(183.9),
		Price:     decimal.NewFromFloat(185.5),
		Volume:    52_000_000,
		Timestamp: time.Now(),
	}

	got := q.FormatSnapshot()
	want := "AAPL  price=185.50 open=184.10 high=186.75 low=183.90 volume=52000000"
	if got != want {
		t.Errorf("FormatSnapshot() = %q, want %q", got, want)
	}
}

func TestFormatDigest(t *testing.T) {
	items := []NewsItem{
		{Title: "Apple beats earnings estimates", Source: "Reuters"},
		{Title: "iPhone demand steady in China"},
	}

	got := FormatDigest(items)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if lines[0] != "- Apple beats earnings estimates (Reuters)" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "- iPhone demand steady in China" {
		t.Errorf("line 2 = %q", lines[1])
	}
}

func TestFormatDigestEmpty(t *testing.T) {
	if got := FormatDigest(nil); got != "" {
		t.Errorf("FormatDigest(nil) = %q, want empty", got)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	if _, err := NewNewsClient().Search("  ", 5); err == nil {
		t.Error("expected an error for an empty query")
	}
}
