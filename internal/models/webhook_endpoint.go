package models

import "time"

// DefaultEndpointSymbol is the fallback row consulted when a symbol has no
// webhook of its own.
const DefaultEndpointSymbol = "default"

// WebhookEndpoint maps a symbol to its outbound notification webhook.
type WebhookEndpoint struct {
	Symbol string `gorm:"primaryKey;type:varchar(20)"`
	URL    string `gorm:"type:text;not null"`
	Note   string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (WebhookEndpoint) TableName() string {
	return "webhook_endpoints"
}
