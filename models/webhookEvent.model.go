package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Webhook providers
const (
	ProviderStripe = "stripe"
	ProviderClerk  = "clerk"
)

// WebhookEvent records processed deliveries so retries are acknowledged once
type WebhookEvent struct {
	gorm.Model
	Provider    string         `json:"provider" gorm:"uniqueIndex:idx_webhook_provider_event;size:20;not null"`
	EventID     string         `json:"event_id" gorm:"uniqueIndex:idx_webhook_provider_event;size:191;not null"`
	Type        string         `json:"type" gorm:"size:120"`
	Payload     datatypes.JSON `json:"payload"`
	ProcessedAt time.Time      `json:"processed_at"`
}
