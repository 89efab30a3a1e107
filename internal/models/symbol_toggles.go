package models

import (
	"time"

	"gorm.io/datatypes"
)

// SymbolToggles stores the per-symbol alert-tag suppression map as one JSON
// document (tag -> enabled). Tags absent from the map are treated as enabled.
type SymbolToggles struct {
	Symbol  string         `gorm:"primaryKey;type:varchar(20)"`
	Toggles datatypes.JSON `gorm:"type:jsonb;not null"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SymbolToggles) TableName() string {
	return "alert_toggles"
}
