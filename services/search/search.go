// Package search indexes published courses in Elasticsearch.
package search

import (
	"context"
	"time"
)

// CourseDocument is what the index stores for one published course
type CourseDocument struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle"`
	Description    string    `json:"description"`
	Slug           string    `json:"slug"`
	Level          string    `json:"level"`
	Language       string    `json:"language"`
	CategorySlug   string    `json:"category_slug"`
	InstructorName string    `json:"instructor_name"`
	Price          int64     `json:"price"`
	AverageRating  float64   `json:"average_rating"`
	TotalStudents  int       `json:"total_students"`
	PublishedAt    time.Time `json:"published_at"`
}

// Indexer is the search backend. Search returns course ids ordered by relevance.
type Indexer interface {
	Enabled() bool
	Index(ctx context.Context, doc CourseDocument) error
	Delete(ctx context.Context, courseID uint) error
	Search(ctx context.Context, query string, size int) ([]uint, error)
	Reindex(ctx context.Context, docs []CourseDocument) error
}

// Noop is used when no cluster is configured; callers fall back to SQL matching
type Noop struct{}

func (Noop) Enabled() bool                                       { return false }
func (Noop) Index(context.Context, CourseDocument) error         { return nil }
func (Noop) Delete(context.Context, uint) error                  { return nil }
func (Noop) Search(context.Context, string, int) ([]uint, error) { return nil, nil }
func (Noop) Reindex(context.Context, []CourseDocument) error     { return nil }
