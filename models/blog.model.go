package models

import (
	"time"

	"gorm.io/gorm"
)

// Blog status values
const (
	BlogDraft     = "DRAFT"
	BlogPublished = "PUBLISHED"
)

type Blog struct {
	gorm.Model
	AuthorID    uint       `json:"author_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;size:191;not null"`
	Excerpt     string     `json:"excerpt" gorm:"default:''"`
	Content     string     `json:"content" gorm:"type:text"`
	CoverImage  string     `json:"cover_image" gorm:"default:''"`
	Status      string     `json:"status" gorm:"size:20;default:'DRAFT';index"`
	PublishedAt *time.Time `json:"published_at"`
	Views       int        `json:"views" gorm:"default:0"`
	IsDeleted   bool       `json:"-" gorm:"default:false"`

	Author User  `json:"-" gorm:"foreignKey:AuthorID"`
	Tags   []Tag `json:"tags" gorm:"many2many:blog_tags"`
}

type Tag struct {
	gorm.Model
	Name string `json:"name" gorm:"size:64;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:64;not null"`
}

type BlogComment struct {
	gorm.Model
	BlogID    uint   `json:"blog_id" gorm:"index;not null"`
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	ParentID  *uint  `json:"parent_id" gorm:"index"`
	Content   string `json:"content" gorm:"type:text;not null"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
	User      User   `json:"-" gorm:"foreignKey:UserID"`
}
