package orders

import (
	"context"
	"errors"
	"log"
	"strconv"

	"brainix/apperrors"
	"brainix/models"
	"brainix/services/email"
	"brainix/services/payments"

	"gorm.io/gorm"
)

// OrderForIntent finds the order a payment intent belongs to: metadata order_id first, then the intent id
func (s *Service) OrderForIntent(intent *payments.PaymentIntent) (*models.Order, error) {
	order := &models.Order{}
	if raw := intent.Metadata["order_id"]; raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			err := s.DB.First(order, uint(id)).Error
			if err == nil {
				return order, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}
	if intent.ID != "" {
		err := s.DB.Where("payment_intent_id = ?", intent.ID).First(order).Error
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, apperrors.ErrOrderNotFound
}

// PaymentSucceeded fulfils the order of a succeeded intent. An amount mismatch fails the order instead.
func (s *Service) PaymentSucceeded(ctx context.Context, intent *payments.PaymentIntent) error {
	order, err := s.OrderForIntent(intent)
	if err != nil {
		return err
	}
	if order.PaymentIntentID == "" && intent.ID != "" {
		if err := s.DB.Model(order).Update("payment_intent_id", intent.ID).Error; err != nil {
			log.Printf("[STRIPE-WEBHOOK] could not attach intent %s to %s: %v", intent.ID, order.OrderNumber, err)
		}
	}
	if intent.Amount != order.Total {
		log.Printf("[STRIPE-WEBHOOK] amount mismatch on %s: paid %d, expected %d", order.OrderNumber, intent.Amount, order.Total)
		return s.DB.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderPending).
			Update("status", models.OrderFailed).Error
	}
	_, err = s.Fulfill(ctx, order.ID)
	return err
}

// PaymentUnsuccessful moves a PENDING order to status (FAILED or CANCELLED)
func (s *Service) PaymentUnsuccessful(intent *payments.PaymentIntent, status string) error {
	order, err := s.OrderForIntent(intent)
	if err != nil {
		return err
	}
	res := s.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 && status == models.OrderFailed && s.Mailer != nil {
		var user models.User
		if err := s.DB.First(&user, order.UserID).Error; err == nil {
			s.Mailer.Send(email.PaymentFailed(user.FullName(), user.Email, order.OrderNumber))
		}
	}
	return nil
}

// RefundCompleted marks a completed order REFUNDED and revokes the enrollments it granted.
// It reports false when the order was not in COMPLETED state.
func (s *Service) RefundCompleted(ctx context.Context, orderID uint) (bool, error) {
	changed := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderCompleted).
			Update("status", models.OrderRefunded)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true

		var order models.Order
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return err
		}

		revoked := 0
		for _, item := range order.Items {
			res := tx.Model(&models.Enrollment{}).
				Where("user_id = ? AND course_id = ? AND order_id = ? AND status <> ?", order.UserID, item.CourseID, order.ID, models.EnrollmentRefunded).
				Update("status", models.EnrollmentRefunded)
			if res.Error != nil {
				return res.Error
			}

			instructorUpdates := map[string]interface{}{
				"total_revenue": gorm.Expr("total_revenue - ?", item.Price),
			}
			if res.RowsAffected > 0 {
				revoked++
				if err := tx.Model(&models.Course{}).Where("id = ? AND total_students > 0", item.CourseID).
					Update("total_students", gorm.Expr("total_students - ?", 1)).Error; err != nil {
					return err
				}
				instructorUpdates["total_students"] = gorm.Expr("total_students - ?", 1)
			}
			if err := tx.Model(&models.InstructorProfile{}).Where("user_id = ?", item.InstructorID).
				Updates(instructorUpdates).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.StudentProfile{}).Where("user_id = ?", order.UserID).Updates(map[string]interface{}{
			"total_courses_enrolled": gorm.Expr("total_courses_enrolled - ?", revoked),
			"total_spent":            gorm.Expr("total_spent - ?", order.Total),
		}).Error
	})
	if err == nil && changed {
		log.Printf("[REFUND] order %d refunded", orderID)
	}
	return changed, err
}

// ChargeRefunded handles a fully refunded charge reported by the provider
func (s *Service) ChargeRefunded(ctx context.Context, charge *payments.Charge) error {
	if !charge.Refunded {
		log.Printf("[STRIPE-WEBHOOK] partial refund on %s ignored (%d of %d)", charge.PaymentIntent, charge.AmountRefunded, charge.Amount)
		return nil
	}
	order, err := s.OrderForIntent(&payments.PaymentIntent{ID: charge.PaymentIntent})
	if err != nil {
		return err
	}
	_, err = s.RefundCompleted(ctx, order.ID)
	return err
}

// RequestRefund refunds a completed order at the provider, then locally
func (s *Service) RequestRefund(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.Order(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderCompleted {
		return nil, apperrors.BadRequest("Only completed orders can be refunded!")
	}
	if order.Total > 0 && order.PaymentIntentID != "" {
		if _, err := s.Payments.CreateRefund(ctx, order.PaymentIntentID, "refund-"+order.OrderNumber); err != nil {
			return nil, err
		}
	}
	if _, err := s.RefundCompleted(ctx, order.ID); err != nil {
		return nil, err
	}
	return s.Order(order.ID)
}
