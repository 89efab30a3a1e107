package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradealerts/internal/models"
)

func TestParseEMACrossover(t *testing.T) {
	p := &Parser{}
	msg := "Alert on SPY: MovingAvgCrossover (15 min). SPY crosses above moving average. MARK=580.25"

	ev, ok := p.Parse(msg, time.Now())
	if !ok {
		t.Fatalf("message not parsed")
	}
	if ev.Symbol != "SPY" {
		t.Fatalf("Symbol = %q, want SPY", ev.Symbol)
	}
	if ev.Indicator != models.IndicatorEMA {
		t.Fatalf("Indicator = %q, want ema", ev.Indicator)
	}
	if ev.Direction != models.StatusBullish {
		t.Fatalf("Direction = %q, want BULLISH", ev.Direction)
	}
	if ev.Timeframe != "15MIN" {
		t.Fatalf("Timeframe = %q, want 15MIN", ev.Timeframe)
	}
	if ev.Price == nil || !ev.Price.Equal(decimal.RequireFromString("580.25")) {
		t.Fatalf("Price = %v, want 580.25", ev.Price)
	}
}

func TestParseMACDBearish(t *testing.T) {
	p := &Parser{}
	msg := "Alert on QQQ: MACD (1 hr) crosses below signal. MARK=495.1"

	ev, ok := p.Parse(msg, time.Now())
	if !ok {
		t.Fatalf("message not parsed")
	}
	if ev.Indicator != models.IndicatorMACD {
		t.Fatalf("Indicator = %q, want macd", ev.Indicator)
	}
	if ev.Direction != models.StatusBearish {
		t.Fatalf("Direction = %q, want BEARISH", ev.Direction)
	}
	if ev.Timeframe != "1HR" {
		t.Fatalf("Timeframe = %q, want 1HR", ev.Timeframe)
	}
}

func TestParseDefaultSymbol(t *testing.T) {
	p := &Parser{DefaultSymbol: "spy"}
	msg := "MovingAvgCrossover (4 hr): crosses above"

	ev, ok := p.Parse(msg, time.Now())
	if !ok {
		t.Fatalf("message not parsed")
	}
	if ev.Symbol != "SPY" {
		t.Fatalf("Symbol = %q, want SPY default", ev.Symbol)
	}
	if ev.Timeframe != "4HR" {
		t.Fatalf("Timeframe = %q, want 4HR", ev.Timeframe)
	}

	// Without a default the same message carries no symbol.
	bare := &Parser{}
	if _, ok := bare.Parse(msg, time.Now()); ok {
		t.Fatalf("symbol-less message parsed without a default symbol")
	}
}

func TestParsePriceOptional(t *testing.T) {
	p := &Parser{DefaultSymbol: "SPY"}
	ev, ok := p.Parse("MACD (1 day) bullish crossover", time.Now())
	if !ok {
		t.Fatalf("message not parsed")
	}
	if ev.Price != nil {
		t.Fatalf("Price = %v, want nil", ev.Price)
	}
	if ev.Timeframe != "1DAY" {
		t.Fatalf("Timeframe = %q, want 1DAY", ev.Timeframe)
	}
}

func TestParseRejectsNoise(t *testing.T) {
	p := &Parser{DefaultSymbol: "SPY"}
	for _, msg := range []string{
		"Your verification code is 123456",
		"Alert on SPY: account balance updated",
		"MACD (1 hr) consolidating sideways", // no direction
		"MACD crosses above signal",          // no timeframe
	} {
		if _, ok := p.Parse(msg, time.Now()); ok {
			t.Fatalf("noise message parsed: %q", msg)
		}
	}
}
