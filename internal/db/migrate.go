package db

import (
	"tradealerts/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.TimeframeState{},
		&models.StateChange{},
		&models.SymbolToggles{},
		&models.WebhookEndpoint{},
		&models.Metadata{},
	)
}
