package models

import "gorm.io/gorm"

type Cart struct {
	gorm.Model
	UserID uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID"`
}

type CartItem struct {
	gorm.Model
	CartID     uint   `json:"cart_id" gorm:"uniqueIndex:idx_cart_course;not null"`
	CourseID   uint   `json:"course_id" gorm:"uniqueIndex:idx_cart_course;not null"`
	PriceAtAdd int64  `json:"price_at_add"`
	Course     Course `json:"course" gorm:"foreignKey:CourseID"`
}
