package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course status values
const (
	CourseStatusDraft     = "DRAFT"
	CourseStatusPublished = "PUBLISHED"
	CourseStatusArchived  = "ARCHIVED"
)

// Course level values
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
	LevelAllLevels    = "ALL_LEVELS"
)

// Lesson type values
const (
	LessonTypeVideo   = "VIDEO"
	LessonTypeArticle = "ARTICLE"
	LessonTypeQuiz    = "QUIZ"
)

type Category struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:120;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:191;not null"`
	Description string `json:"description" gorm:"type:text"`
}

// Course is a sellable unit of content owned by one instructor
type Course struct {
	gorm.Model
	InstructorID     uint           `json:"instructor_id" gorm:"index;not null"`
	CategoryID       *uint          `json:"category_id" gorm:"index"`
	Title            string         `json:"title" gorm:"not null"`
	Slug             string         `json:"slug" gorm:"uniqueIndex;size:191;not null"`
	Subtitle         string         `json:"subtitle" gorm:"default:''"`
	Description      string         `json:"description" gorm:"type:text"`
	Level            string         `json:"level" gorm:"size:20;default:'ALL_LEVELS'"`
	Language         string         `json:"language" gorm:"size:40;default:'English'"`
	Price            int64          `json:"price" gorm:"default:0"` // cents
	DiscountPrice    *int64         `json:"discount_price"`
	ThumbnailURL     string         `json:"thumbnail_url" gorm:"default:''"`
	Status           string         `json:"status" gorm:"size:20;default:'DRAFT';index"`
	PublishedAt      *time.Time     `json:"published_at"`
	TotalLessons     int            `json:"total_lessons" gorm:"default:0"`
	TotalDuration    int            `json:"total_duration" gorm:"default:0"` // seconds
	TotalStudents    int            `json:"total_students" gorm:"default:0"`
	AverageRating    float64        `json:"average_rating" gorm:"default:0"`
	ReviewCount      int            `json:"review_count" gorm:"default:0"`
	Requirements     datatypes.JSON `json:"requirements"`
	LearningOutcomes datatypes.JSON `json:"learning_outcomes"`
	IsDeleted        bool           `json:"-" gorm:"default:false"`

	Instructor User      `json:"-" gorm:"foreignKey:InstructorID"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Modules    []Module  `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}

// EffectivePrice is the price a buyer pays before coupons
func (c Course) EffectivePrice() int64 {
	if c.DiscountPrice != nil && *c.DiscountPrice >= 0 && *c.DiscountPrice < c.Price {
		return *c.DiscountPrice
	}
	return c.Price
}

func (c Course) IsPublished() bool {
	return c.Status == CourseStatusPublished && !c.IsDeleted
}

// Module is an ordered section of a course
type Module struct {
	gorm.Model
	CourseID    uint     `json:"course_id" gorm:"index;not null"`
	Title       string   `json:"title" gorm:"not null"`
	Description string   `json:"description" gorm:"type:text"`
	Position    int      `json:"position" gorm:"default:0"`
	Lessons     []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
}

// Lesson is a single playable or readable unit inside a module
type Lesson struct {
	gorm.Model
	CourseID      uint           `json:"course_id" gorm:"index;not null"`
	ModuleID      uint           `json:"module_id" gorm:"index;not null"`
	Title         string         `json:"title" gorm:"not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Type          string         `json:"type" gorm:"size:20;default:'VIDEO'"`
	VideoURL      string         `json:"video_url,omitempty" gorm:"default:''"`
	Content       string         `json:"content,omitempty" gorm:"type:text"`
	Duration      int            `json:"duration" gorm:"default:0"` // seconds
	Position      int            `json:"position" gorm:"default:0"`
	IsFreePreview bool           `json:"is_free_preview" gorm:"default:false"`
	Resources     datatypes.JSON `json:"resources,omitempty"`
}

// Redact strips the playable parts of a lesson for callers without access
func (l *Lesson) Redact() {
	l.VideoURL = ""
	l.Content = ""
	l.Resources = nil
}
