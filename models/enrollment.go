package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment status values
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentRefunded  = "REFUNDED"
)

// Enrollment links a user to a purchased course and gates content access
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID         uint       `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	OrderID          *uint      `json:"order_id" gorm:"index"`
	Status           string     `json:"status" gorm:"size:20;default:'ACTIVE'"`
	ProgressPercent  float64    `json:"progress_percent" gorm:"default:0"`
	CompletedLessons int        `json:"completed_lessons" gorm:"default:0"`
	LastAccessedAt   *time.Time `json:"last_accessed_at"`
	CompletedAt      *time.Time `json:"completed_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID"`
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// HasAccess reports whether the enrollment still grants content access
func (e Enrollment) HasAccess() bool {
	return e.Status == EnrollmentActive || e.Status == EnrollmentCompleted
}

// Progress is the per-lesson completion and watch position of an enrollment
type Progress struct {
	gorm.Model
	EnrollmentID  uint       `json:"enrollment_id" gorm:"uniqueIndex:idx_progress_enrollment_lesson;not null"`
	LessonID      uint       `json:"lesson_id" gorm:"uniqueIndex:idx_progress_enrollment_lesson;not null"`
	UserID        uint       `json:"user_id" gorm:"index;not null"`
	CourseID      uint       `json:"course_id" gorm:"index;not null"`
	IsCompleted   bool       `json:"is_completed" gorm:"default:false"`
	WatchPosition int        `json:"watch_position" gorm:"default:0"` // seconds
	CompletedAt   *time.Time `json:"completed_at"`
}

func (Progress) TableName() string {
	return "progress"
}

// Certificate is issued once per completed enrollment
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          uint      `json:"course_id" gorm:"index;not null"`
	EnrollmentID      uint      `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"uniqueIndex;size:64;not null"`
	IssuedAt          time.Time `json:"issued_at"`

	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	User   User   `json:"-" gorm:"foreignKey:UserID"`
}
