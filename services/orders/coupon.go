package orders

import (
	"errors"
	"time"

	"brainix/apperrors"
	"brainix/models"

	"gorm.io/gorm"
)

// ValidateCoupon resolves code and checks it can be applied by userID to lines
func ValidateCoupon(db *gorm.DB, code string, userID uint, lines []Line, now time.Time) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := db.Where("code = ?", NormalizeCode(code)).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCouponInvalid
		}
		return nil, err
	}

	if !coupon.IsActive || coupon.Exhausted() {
		return nil, apperrors.ErrCouponInvalid
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, apperrors.ErrCouponInvalid
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, apperrors.ErrCouponInvalid
	}

	var used int64
	if err := db.Model(&models.CouponUsage{}).
		Joins("JOIN orders ON orders.id = coupon_usages.order_id").
		Where("coupon_usages.coupon_id = ? AND coupon_usages.user_id = ? AND orders.status = ?", coupon.ID, userID, models.OrderCompleted).
		Count(&used).Error; err != nil {
		return nil, err
	}
	if used > 0 {
		return nil, apperrors.ErrCouponUsed
	}

	var subtotal int64
	eligible := false
	for _, l := range lines {
		subtotal += l.OriginalPrice
		if coupon.CourseID == nil || *coupon.CourseID == l.CourseID {
			eligible = true
		}
	}
	if subtotal < coupon.MinOrderAmount {
		return nil, apperrors.ErrCouponMinimum
	}
	if !eligible {
		return nil, apperrors.ErrCouponNotEligible
	}
	return &coupon, nil
}

// DeactivateCoupons switches off expired and exhausted coupons
func (s *Service) DeactivateCoupons(now time.Time) (int64, error) {
	res := s.DB.Model(&models.Coupon{}).
		Where("is_active = ?", true).
		Where("(valid_until IS NOT NULL AND valid_until < ?) OR (max_uses IS NOT NULL AND used_count >= max_uses)", now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
