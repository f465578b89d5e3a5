package webhookController

import (
	"errors"
	"log"
	"time"

	"brainix/database"
	"brainix/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func alreadyProcessed(provider, eventID string) (bool, error) {
	var event models.WebhookEvent
	err := database.Database.Db.Where("provider = ? AND event_id = ?", provider, eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// markProcessed records a handled delivery; a concurrent duplicate loses the insert silently
func markProcessed(provider, eventID, eventType string, payload []byte) {
	event := models.WebhookEvent{
		Provider:    provider,
		EventID:     eventID,
		Type:        eventType,
		Payload:     datatypes.JSON(payload),
		ProcessedAt: time.Now(),
	}
	if err := database.Database.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&event).Error; err != nil {
		log.Printf("[WEBHOOK] failed to record %s event %s: %v", provider, eventID, err)
	}
}
