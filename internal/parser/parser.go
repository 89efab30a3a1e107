// Package parser extracts structured crossover events from the free-text
// alerts forwarded by the phone relay. Extraction is regex-based and
// tolerant: anything that does not look like a crossover alert is reported
// as not-parsed, never as an error.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradealerts/internal/models"
	"tradealerts/internal/timeframe"
)

var (
	symbolRe    = regexp.MustCompile(`(?i)ALERT\s+ON\s+([A-Za-z]{1,6})\b`)
	priceRe     = regexp.MustCompile(`(?i)MARK\s*=\s*([\d]+\.?[\d]*)`)
	timeframeRe = regexp.MustCompile(`(?i)\b(\d+)\s*(MIN|HR|DAY)\b`)
)

// Direction keywords, checked in order; "crosses above/below" is the Schwab
// study phrasing, bullish/bearish the generic one.
var (
	bullishMarkers = []string{"crosses above", "bullish", "cross above"}
	bearishMarkers = []string{"crosses below", "bearish", "cross below"}
)

var emaMarkers = []string{"movingavgcrossover", "moving average", "ema cross", "exponential", "length1"}

type Parser struct {
	// DefaultSymbol is assumed when the text names no symbol (single-ticker
	// relay setups).
	DefaultSymbol string
}

// Parse extracts a crossover event from one relay message. The second return
// is false when the text is not a recognizable crossover alert.
func (p *Parser) Parse(message string, receivedAt time.Time) (models.CrossoverEvent, bool) {
	ev := models.CrossoverEvent{ReceivedAt: receivedAt}
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "macd"):
		ev.Indicator = models.IndicatorMACD
	case containsAny(lower, emaMarkers) || strings.Contains(lower, "crossover"):
		ev.Indicator = models.IndicatorEMA
	default:
		return models.CrossoverEvent{}, false
	}

	switch {
	case containsAny(lower, bullishMarkers):
		ev.Direction = models.StatusBullish
	case containsAny(lower, bearishMarkers):
		ev.Direction = models.StatusBearish
	default:
		return models.CrossoverEvent{}, false
	}

	if m := timeframeRe.FindStringSubmatch(message); m != nil {
		ev.Timeframe = timeframe.Normalize(m[1] + m[2])
	} else {
		return models.CrossoverEvent{}, false
	}

	if m := symbolRe.FindStringSubmatch(message); m != nil {
		ev.Symbol = strings.ToUpper(m[1])
	} else if p != nil && p.DefaultSymbol != "" {
		ev.Symbol = strings.ToUpper(p.DefaultSymbol)
	} else {
		return models.CrossoverEvent{}, false
	}

	if m := priceRe.FindStringSubmatch(message); m != nil {
		if price, err := decimal.NewFromString(m[1]); err == nil {
			ev.Price = &price
		}
	}

	return ev, true
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
