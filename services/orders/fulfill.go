package orders

import (
	"context"
	"log"
	"time"

	"brainix/models"
	"brainix/services/email"

	"gorm.io/gorm"
)

// fulfillable are the states a confirmed payment may complete
var fulfillable = []string{models.OrderPending, models.OrderFailed, models.OrderCancelled}

// Fulfill completes an order in one transaction: status, enrollments, course and
// instructor counters, coupon usage, cart and student stats. It returns false when the
// order was already completed (or refunded) and nothing changed.
func (s *Service) Fulfill(ctx context.Context, orderID uint) (bool, error) {
	var order models.Order
	changed := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID, fulfillable).
			Updates(map[string]interface{}{"status": models.OrderCompleted, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true

		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			return err
		}

		granted := 0
		courseIDs := make([]uint, 0, len(order.Items))
		for _, item := range order.Items {
			courseIDs = append(courseIDs, item.CourseID)

			isNew, err := grantEnrollment(tx, order, item.CourseID)
			if err != nil {
				return err
			}

			instructorUpdates := map[string]interface{}{
				"total_revenue": gorm.Expr("total_revenue + ?", item.Price),
			}
			if isNew {
				granted++
				if err := tx.Model(&models.Course{}).Where("id = ?", item.CourseID).
					Update("total_students", gorm.Expr("total_students + ?", 1)).Error; err != nil {
					return err
				}
				instructorUpdates["total_students"] = gorm.Expr("total_students + ?", 1)
			}
			if err := tx.Model(&models.InstructorProfile{}).Where("user_id = ?", item.InstructorID).
				Updates(instructorUpdates).Error; err != nil {
				return err
			}
		}

		if order.CouponID != nil {
			res := tx.Model(&models.Coupon{}).
				Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", *order.CouponID).
				Update("used_count", gorm.Expr("used_count + ?", 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				log.Printf("[FULFIL] coupon %d of order %s reached its limit during payment", *order.CouponID, order.OrderNumber)
			}
			if err := tx.Create(&models.CouponUsage{CouponID: *order.CouponID, UserID: order.UserID, OrderID: order.ID}).Error; err != nil {
				return err
			}
		}

		var cart models.Cart
		if err := tx.Where("user_id = ?", order.UserID).Limit(1).Find(&cart).Error; err != nil {
			return err
		}
		if cart.ID != 0 && len(courseIDs) > 0 {
			if err := tx.Unscoped().Where("cart_id = ? AND course_id IN ?", cart.ID, courseIDs).
				Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}

		profile := models.StudentProfile{}
		if err := tx.Where(models.StudentProfile{UserID: order.UserID}).FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		return tx.Model(&models.StudentProfile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
			"total_courses_enrolled": gorm.Expr("total_courses_enrolled + ?", granted),
			"total_spent":            gorm.Expr("total_spent + ?", order.Total),
		}).Error
	})
	if err != nil {
		log.Printf("[FULFIL] order %d rolled back: %v", orderID, err)
		return false, err
	}
	if changed {
		log.Printf("[FULFIL] order %s completed with %d item(s)", order.OrderNumber, len(order.Items))
		s.sendConfirmation(order)
	}
	return changed, nil
}

// grantEnrollment creates or reactivates the enrollment; it reports whether access is new
func grantEnrollment(tx *gorm.DB, order models.Order, courseID uint) (bool, error) {
	var enrollment models.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", order.UserID, courseID).Limit(1).Find(&enrollment).Error
	if err != nil {
		return false, err
	}
	orderID := order.ID

	if enrollment.ID == 0 {
		enrollment = models.Enrollment{
			UserID:   order.UserID,
			CourseID: courseID,
			OrderID:  &orderID,
			Status:   models.EnrollmentActive,
		}
		return true, tx.Create(&enrollment).Error
	}
	if enrollment.HasAccess() {
		return false, nil
	}
	return true, tx.Model(&enrollment).Updates(map[string]interface{}{
		"status":   models.EnrollmentActive,
		"order_id": orderID,
	}).Error
}

func (s *Service) sendConfirmation(order models.Order) {
	if s.Mailer == nil {
		return
	}
	var user models.User
	if err := s.DB.First(&user, order.UserID).Error; err != nil {
		return
	}
	var titles []string
	s.DB.Model(&models.Course{}).
		Joins("JOIN order_items ON order_items.course_id = courses.id").
		Where("order_items.order_id = ?", order.ID).
		Pluck("courses.title", &titles)

	msg := email.OrderConfirmation(user.FullName(), user.Email, order.OrderNumber, order.Total, order.Currency, titles, s.PublicURL+"/my-learning")
	s.Mailer.Send(msg)
}
