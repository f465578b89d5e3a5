package orders

import (
	"context"
	"time"

	"brainix/models"
)

// CancelStalePending cancels PENDING orders created before now-ttl and releases their intents
func (s *Service) CancelStalePending(ctx context.Context, ttl time.Duration, now time.Time) (int, error) {
	cutoff := now.Add(-ttl)

	var stale []models.Order
	if err := s.DB.Where("status = ? AND created_at < ?", models.OrderPending, cutoff).Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(stale))
	for _, o := range stale {
		ids = append(ids, o.ID)
	}
	res := s.DB.Model(&models.Order{}).
		Where("id IN ? AND status = ?", ids, models.OrderPending).
		Update("status", models.OrderCancelled)
	if res.Error != nil {
		return 0, res.Error
	}
	s.cancelIntents(ctx, stale)
	return int(res.RowsAffected), nil
}
