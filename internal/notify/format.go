package notify

import (
	"fmt"
	"strings"
	"time"

	"tradealerts/internal/models"
	"tradealerts/internal/state"
)

// emojiWeight scales the signal marker with the timeframe: intraday crosses
// get one dot, daily crosses get four.
var emojiWeight = map[string]int{
	"1MIN":  1,
	"5MIN":  1,
	"15MIN": 2,
	"30MIN": 2,
	"1HR":   3,
	"2HR":   3,
	"4HR":   4,
	"1DAY":  4,
}

func directionEmoji(direction string) string {
	if direction == models.StatusBearish {
		return "\U0001F534" // red circle
	}
	return "\U0001F7E2" // green circle
}

func indicatorLabel(indicator string) string {
	if indicator == models.IndicatorMACD {
		return "MACD Cross"
	}
	return "EMA Cross"
}

// FormatAlert renders the chat message for a delivered crossover.
func FormatAlert(ev models.CrossoverEvent, tag string, loc *time.Location) string {
	weight := emojiWeight[ev.Timeframe]
	if weight == 0 {
		weight = 1
	}

	mark := "N/A"
	if ev.Price != nil {
		mark = "$" + ev.Price.StringFixed(2)
	}

	at := ev.ReceivedAt
	if at.IsZero() {
		at = time.Now()
	}
	if loc != nil {
		at = at.In(loc)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(directionEmoji(ev.Direction), weight))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s - %s\n", ev.Timeframe, indicatorLabel(ev.Indicator), tag)
	fmt.Fprintf(&b, "MARK: %s\n", mark)
	fmt.Fprintf(&b, "TIME: %s\n", at.Format("03:04 PM MST"))
	b.WriteString("@everyone")
	return b.String()
}

// FormatSummary renders the daily state recap for one symbol.
func FormatSummary(sum state.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s Daily State Summary**\n", sum.Symbol)
	fmt.Fprintf(&b, "EMA: %d bullish / %d bearish | MACD: %d bullish / %d bearish\n",
		sum.EMABullishCount, sum.EMABearishCount, sum.MACDBullishCount, sum.MACDBearishCount)
	for _, tf := range sum.Timeframes {
		fmt.Fprintf(&b, "%s %s  EMA %s | MACD %s\n",
			summaryEmoji(tf.EMAStatus, tf.MACDStatus), tf.Timeframe, tf.EMAStatus, tf.MACDStatus)
	}
	return strings.TrimRight(b.String(), "\n")
}

func summaryEmoji(ema, macd string) string {
	switch {
	case ema == models.StatusBullish && macd == models.StatusBullish:
		return "\U0001F7E2"
	case ema == models.StatusBearish && macd == models.StatusBearish:
		return "\U0001F534"
	default:
		return "⚪" // white circle, mixed or unknown
	}
}
