package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrossoverEvent is the structured event produced by the inbound text
// parser: one reported directional shift of one indicator on one timeframe.
// Fields are already normalized (symbol/timeframe/direction uppercase,
// indicator lowercase) by the time the event reaches the core services.
type CrossoverEvent struct {
	Symbol     string
	Timeframe  string
	Indicator  string // ema | macd
	Direction  string // BULLISH | BEARISH
	Price      *decimal.Decimal
	ReceivedAt time.Time
}
