package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount types
const (
	DiscountPercentage = "PERCENTAGE"
	DiscountFixed      = "FIXED"
)

// Coupon is a discount code with usage limits and a validity window
type Coupon struct {
	gorm.Model
	Code           string     `json:"code" gorm:"uniqueIndex;size:64;not null"`
	Description    string     `json:"description" gorm:"default:''"`
	DiscountType   string     `json:"discount_type" gorm:"size:20;not null"`
	DiscountValue  int64      `json:"discount_value" gorm:"not null"` // percent, or cents for FIXED
	MaxUses        *int       `json:"max_uses"`                       // nil means unlimited
	UsedCount      int        `json:"used_count" gorm:"default:0"`
	MinOrderAmount int64      `json:"min_order_amount" gorm:"default:0"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidUntil     *time.Time `json:"valid_until"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	CourseID       *uint      `json:"course_id" gorm:"index"`
	CreatedBy      uint       `json:"created_by"`
}

// Exhausted reports whether the coupon reached its usage limit
func (c Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

type CouponUsage struct {
	gorm.Model
	CouponID uint `json:"coupon_id" gorm:"index;not null"`
	UserID   uint `json:"user_id" gorm:"index;not null"`
	OrderID  uint `json:"order_id" gorm:"uniqueIndex;not null"`
}
