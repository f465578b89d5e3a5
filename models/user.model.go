package models

import (
	"strings"

	"gorm.io/gorm"
)

// Roles mirrored from the identity provider's public metadata
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is the local mirror of an identity provider account
type User struct {
	gorm.Model
	ClerkID   string `json:"clerk_id" gorm:"uniqueIndex;size:191;not null"`
	Email     string `json:"email" gorm:"uniqueIndex;size:191;not null"`
	FirstName string `json:"first_name" gorm:"default:''"`
	LastName  string `json:"last_name" gorm:"default:''"`
	ImageURL  string `json:"image_url" gorm:"default:''"`
	Role      string `json:"role" gorm:"size:20;default:'student';index"`
	IsDeleted bool   `json:"-" gorm:"default:false"`

	StudentProfile    *StudentProfile    `json:"student_profile,omitempty" gorm:"foreignKey:UserID"`
	InstructorProfile *InstructorProfile `json:"instructor_profile,omitempty" gorm:"foreignKey:UserID"`
}

// FullName joins first and last name, falling back to the email
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the public projection of a user embedded in other payloads
type UserSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, ImageURL: u.ImageURL}
}
