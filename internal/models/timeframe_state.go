package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Directional status of an indicator on one timeframe.
const (
	StatusBullish = "BULLISH"
	StatusBearish = "BEARISH"
	StatusUnknown = "UNKNOWN"
)

// Indicator kinds reported by the upstream parser.
const (
	IndicatorEMA  = "ema"
	IndicatorMACD = "macd"
)

// TimeframeState holds the current EMA/MACD direction for one
// (symbol, timeframe) pair. Exactly one row per pair; the two indicators
// are updated independently and rows are never deleted.
type TimeframeState struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Symbol    string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_symbol_timeframe"`
	Timeframe string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_symbol_timeframe"`

	EMAStatus  string `gorm:"type:varchar(10);not null;default:UNKNOWN"`
	MACDStatus string `gorm:"type:varchar(10);not null;default:UNKNOWN"`

	LastEMAUpdate  *time.Time `gorm:"type:timestamptz"`
	LastMACDUpdate *time.Time `gorm:"type:timestamptz"`

	LastEMAPrice  *decimal.Decimal `gorm:"type:numeric(18,6)"`
	LastMACDPrice *decimal.Decimal `gorm:"type:numeric(18,6)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (TimeframeState) TableName() string {
	return "timeframe_states"
}

// Status returns the stored direction for an indicator.
func (s *TimeframeState) Status(indicator string) string {
	if s == nil {
		return StatusUnknown
	}
	switch indicator {
	case IndicatorEMA:
		return s.EMAStatus
	case IndicatorMACD:
		return s.MACDStatus
	default:
		return StatusUnknown
	}
}
