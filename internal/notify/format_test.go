package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradealerts/internal/models"
	"tradealerts/internal/state"
)

func TestFormatAlert(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	price := decimal.RequireFromString("580.25")
	ev := models.CrossoverEvent{
		Symbol:     "SPY",
		Timeframe:  "4HR",
		Indicator:  models.IndicatorEMA,
		Direction:  models.StatusBullish,
		Price:      &price,
		ReceivedAt: time.Date(2026, 8, 26, 16, 30, 0, 0, time.UTC),
	}

	got := FormatAlert(ev, "CALL4H", loc)

	if !strings.Contains(got, "4HR EMA Cross - CALL4H") {
		t.Fatalf("missing title line:\n%s", got)
	}
	if !strings.Contains(got, "MARK: $580.25") {
		t.Fatalf("missing mark line:\n%s", got)
	}
	if !strings.Contains(got, "09:30 AM PDT") {
		t.Fatalf("time not rendered in local zone:\n%s", got)
	}
	if !strings.HasSuffix(got, "@everyone") {
		t.Fatalf("missing mention suffix:\n%s", got)
	}
	// 4HR carries the heaviest marker weight.
	if n := strings.Count(got, "\U0001F7E2"); n != 4 {
		t.Fatalf("green markers = %d, want 4", n)
	}
}

func TestFormatAlertDefaults(t *testing.T) {
	ev := models.CrossoverEvent{
		Symbol:     "SPY",
		Timeframe:  "1MIN",
		Indicator:  models.IndicatorMACD,
		Direction:  models.StatusBearish,
		ReceivedAt: time.Date(2026, 8, 26, 16, 30, 0, 0, time.UTC),
	}
	got := FormatAlert(ev, "P1", nil)

	if !strings.Contains(got, "1MIN MACD Cross - P1") {
		t.Fatalf("missing title line:\n%s", got)
	}
	if !strings.Contains(got, "MARK: N/A") {
		t.Fatalf("nil price should render N/A:\n%s", got)
	}
	if n := strings.Count(got, "\U0001F534"); n != 1 {
		t.Fatalf("red markers = %d, want 1", n)
	}
}

func TestFormatSummary(t *testing.T) {
	sum := state.Summary{
		Symbol:           "SPY",
		TotalTimeframes:  2,
		EMABullishCount:  1,
		EMABearishCount:  1,
		MACDBullishCount: 2,
		Timeframes: []state.TimeframeDetail{
			{Timeframe: "5MIN", EMAStatus: models.StatusBullish, MACDStatus: models.StatusBullish},
			{Timeframe: "1HR", EMAStatus: models.StatusBearish, MACDStatus: models.StatusBullish},
		},
	}
	got := FormatSummary(sum)

	if !strings.Contains(got, "SPY Daily State Summary") {
		t.Fatalf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "EMA: 1 bullish / 1 bearish") {
		t.Fatalf("missing EMA counts:\n%s", got)
	}
	if !strings.Contains(got, "5MIN  EMA BULLISH | MACD BULLISH") {
		t.Fatalf("missing 5MIN line:\n%s", got)
	}
	// Fully bullish rows get the green marker, mixed rows the neutral one.
	if !strings.Contains(got, "\U0001F7E2 5MIN") {
		t.Fatalf("5MIN should carry the green marker:\n%s", got)
	}
	if !strings.Contains(got, "\u26AA 1HR") {
		t.Fatalf("1HR should carry the neutral marker:\n%s", got)
	}
}
