package models

import "gorm.io/gorm"

// StudentProfile holds learner specific data and purchase statistics
type StudentProfile struct {
	gorm.Model
	UserID                uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Headline              string `json:"headline" gorm:"default:''"`
	Bio                   string `json:"bio" gorm:"type:text"`
	Interests             string `json:"interests" gorm:"default:''"`
	TotalCoursesEnrolled  int    `json:"total_courses_enrolled" gorm:"default:0"`
	TotalCoursesCompleted int    `json:"total_courses_completed" gorm:"default:0"`
	TotalSpent            int64  `json:"total_spent" gorm:"default:0"` // cents
}

// InstructorProfile holds teaching specific data and sales statistics
type InstructorProfile struct {
	gorm.Model
	UserID        uint    `json:"user_id" gorm:"uniqueIndex;not null"`
	Headline      string  `json:"headline" gorm:"default:''"`
	Bio           string  `json:"bio" gorm:"type:text"`
	Website       string  `json:"website" gorm:"default:''"`
	Expertise     string  `json:"expertise" gorm:"default:''"`
	TotalCourses  int     `json:"total_courses" gorm:"default:0"`
	TotalStudents int     `json:"total_students" gorm:"default:0"`
	TotalRevenue  int64   `json:"total_revenue" gorm:"default:0"` // cents
	AverageRating float64 `json:"average_rating" gorm:"default:0"`
}
