package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"uniqueIndex:idx_review_course_user;not null"`
	UserID   uint   `json:"user_id" gorm:"uniqueIndex:idx_review_course_user;not null"`
	Rating   int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment  string `json:"comment" gorm:"type:text"`
	User     User   `json:"-" gorm:"foreignKey:UserID"`
}
