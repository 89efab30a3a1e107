package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StateChange is the append-only audit trail of directional transitions.
// One row per accepted transition; never mutated or deleted. Replaying the
// most recent row per (symbol, timeframe, indicator) reconstructs the
// current timeframe_states table after data loss.
type StateChange struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Symbol    string `gorm:"type:varchar(20);not null;index:idx_change_key"`
	Timeframe string `gorm:"type:varchar(20);not null;index:idx_change_key"`
	Indicator string `gorm:"type:varchar(10);not null;index:idx_change_key"`

	OldStatus string `gorm:"type:varchar(10)"`
	NewStatus string `gorm:"type:varchar(10);not null"`

	Price *decimal.Decimal `gorm:"type:numeric(18,6)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (StateChange) TableName() string {
	return "state_history"
}
