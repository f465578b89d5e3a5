package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values
const (
	OrderPending   = "PENDING"
	OrderCompleted = "COMPLETED"
	OrderFailed    = "FAILED"
	OrderCancelled = "CANCELLED"
	OrderRefunded  = "REFUNDED"
)

// Order is a checkout transaction; Total always equals the sum of item prices
type Order struct {
	gorm.Model
	OrderNumber     string      `json:"order_number" gorm:"uniqueIndex;size:32;not null"`
	UserID          uint        `json:"user_id" gorm:"index;not null"`
	Subtotal        int64       `json:"subtotal"`
	Discount        int64       `json:"discount"`
	Total           int64       `json:"total"`
	Currency        string      `json:"currency" gorm:"size:8;default:'usd'"`
	Status          string      `json:"status" gorm:"size:20;default:'PENDING';index"`
	CouponID        *uint       `json:"coupon_id"`
	PaymentIntentID string      `json:"payment_intent_id" gorm:"index;size:191;default:''"`
	PaidAt          *time.Time  `json:"paid_at"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Coupon          *Coupon     `json:"coupon,omitempty" gorm:"foreignKey:CouponID"`
}

type OrderItem struct {
	gorm.Model
	OrderID       uint   `json:"order_id" gorm:"index;not null"`
	CourseID      uint   `json:"course_id" gorm:"index;not null"`
	InstructorID  uint   `json:"instructor_id" gorm:"index;not null"`
	OriginalPrice int64  `json:"original_price"`
	Price         int64  `json:"price"`
	Course        Course `json:"course" gorm:"foreignKey:CourseID"`
}
