package models

import (
	"time"

	"gorm.io/datatypes"
)

// Metadata is a process-wide key-value record for miscellaneous singleton
// facts (e.g. the date the daily summary last ran). Last write wins.
type Metadata struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Key   string         `gorm:"type:varchar(120);not null;uniqueIndex"`
	Value datatypes.JSON `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Metadata) TableName() string {
	return "app_metadata"
}
