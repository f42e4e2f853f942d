// Package processing converts free-form decision text into a structured
// trading signal. Parsing is best-effort and keyword based; failure to find
// an explicit action never aborts a run, it falls back to safe defaults.
package processing

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/irwinb/tradecouncil/internal/models"
)

// ErrNoActionKeyword is returned when the text contains no recognizable
// action. The returned decision is still fully populated with defaults.
var ErrNoActionKeyword = errors.New("no explicit action keyword found in decision text")

// SignalExtractor scores buy/sell/hold vocabulary in decision text and
// derives confidence and risk from keyword density.
type SignalExtractor struct {
	buyPatterns  []*regexp.Regexp
	sellPatterns []*regexp.Regexp
	holdPatterns []*regexp.Regexp
	riskPattern  *regexp.Regexp
	pricePattern *regexp.Regexp
}

// NewSignalExtractor creates an extractor with the predefined vocabulary.
func NewSignalExtractor() *SignalExtractor {
	return &SignalExtractor{
		buyPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(buy|purchase|long|bullish|accumulate|invest)\b`),
			regexp.MustCompile(`(?i)\b(strong buy|buy recommendation)\b`),
			regexp.MustCompile(`(?i)\b(undervalued|oversold|upside|growth potential)\b`),
		},
		sellPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(sell|short|bearish|divest|exit)\b`),
			regexp.MustCompile(`(?i)\b(strong sell|sell recommendation|avoid)\b`),
			regexp.MustCompile(`(?i)\b(overvalued|overbought|decline)\b`),
		},
		holdPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(hold|maintain|neutral|wait|sideways)\b`),
			regexp.MustCompile(`(?i)\b(no action|stay put|keep position)\b`),
		},
		riskPattern:  regexp.MustCompile(`(?i)\b(risk|risky|volatile|volatility|uncertain|uncertainty|downside|exposure|drawdown)\b`),
		pricePattern: regexp.MustCompile(`(?i)target[^$0-9]*\$?(\d+(?:\.\d+)?)`),
	}
}

// Extract parses decision text into a FinalDecision. When no action keyword
// is present it returns the hold/0.5/0.5 defaults together with
// ErrNoActionKeyword; the decision is usable either way.
func (e *SignalExtractor) Extract(text string) (*models.FinalDecision, error) {
	lower := strings.ToLower(text)

	buyScore := countMatches(e.buyPatterns, lower)
	sellScore := countMatches(e.sellPatterns, lower)
	holdScore := countMatches(e.holdPatterns, lower)

	if buyScore+sellScore+holdScore == 0 {
		return &models.FinalDecision{
			Action:     models.ActionHold,
			Confidence: 0.5,
			RiskScore:  0.5,
			Reasoning:  strings.TrimSpace(text),
		}, ErrNoActionKeyword
	}

	action := models.ActionHold
	score := holdScore
	switch {
	case buyScore > sellScore && buyScore > holdScore:
		action, score = models.ActionBuy, buyScore
	case sellScore > buyScore && sellScore > holdScore:
		action, score = models.ActionSell, sellScore
	}

	return &models.FinalDecision{
		Action:      action,
		Confidence:  density(score, lower),
		RiskScore:   e.riskScore(lower),
		TargetPrice: e.targetPrice(text),
		Reasoning:   e.reasoning(text, action),
	}, nil
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllString(text, -1))
	}
	return n
}

// density turns a raw match count into a [0.1, 1.0] confidence, scaled by
// text length so a single keyword in a long report stays low confidence.
func density(matches int, text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0.5
	}
	c := float64(matches) / float64(words) * 10
	if c > 1.0 {
		c = 1.0
	}
	if c < 0.1 {
		c = 0.1
	}
	return c
}

func (e *SignalExtractor) riskScore(text string) float64 {
	matches := len(e.riskPattern.FindAllString(text, -1))
	if matches == 0 {
		return 0.5
	}
	return density(matches, text)
}

func (e *SignalExtractor) targetPrice(text string) *float64 {
	m := e.pricePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &price
}

var actionVocabulary = map[models.Action][]string{
	models.ActionBuy:  {"buy", "bullish", "upside", "growth", "undervalued", "accumulate"},
	models.ActionSell: {"sell", "bearish", "decline", "overvalued", "exit", "avoid"},
	models.ActionHold: {"hold", "neutral", "wait", "maintain", "uncertain"},
}

// reasoning picks up to three sentences that mention the chosen action's
// vocabulary.
func (e *SignalExtractor) reasoning(text string, action models.Action) string {
	words := actionVocabulary[action]
	var picked []string
	for _, sentence := range strings.Split(text, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < 10 {
			continue
		}
		lower := strings.ToLower(sentence)
		for _, w := range words {
			if strings.Contains(lower, w) {
				picked = append(picked, sentence)
				break
			}
		}
		if len(picked) >= 3 {
			break
		}
	}
	if len(picked) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.Join(picked, ". ")
}
