// Package catalog keeps derived course data in sync: slugs, totals, ratings and the search index.
package catalog

import (
	"context"
	"log"
	"time"

	"brainix/models"
	"brainix/services/search"

	"gorm.io/gorm"
)

type Service struct {
	DB     *gorm.DB
	Search search.Indexer
}

// Document builds the search document of a course loaded with Instructor and Category
func Document(course models.Course) search.CourseDocument {
	doc := search.CourseDocument{
		ID:             course.ID,
		Title:          course.Title,
		Subtitle:       course.Subtitle,
		Description:    course.Description,
		Slug:           course.Slug,
		Level:          course.Level,
		Language:       course.Language,
		InstructorName: course.Instructor.FullName(),
		Price:          course.EffectivePrice(),
		AverageRating:  course.AverageRating,
		TotalStudents:  course.TotalStudents,
	}
	if course.Category != nil {
		doc.CategorySlug = course.Category.Slug
	}
	if course.PublishedAt != nil {
		doc.PublishedAt = *course.PublishedAt
	}
	return doc
}

// SyncCourse indexes a published course and removes anything else from the index.
// Failures are logged; the database stays the source of truth.
func (s *Service) SyncCourse(ctx context.Context, courseID uint) {
	if !s.Search.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var course models.Course
	err := s.DB.Preload("Instructor").Preload("Category").First(&course, courseID).Error
	if err != nil || !course.IsPublished() {
		if err := s.Search.Delete(ctx, courseID); err != nil {
			log.Printf("[SEARCH] delete course %d: %v", courseID, err)
		}
		return
	}
	if err := s.Search.Index(ctx, Document(course)); err != nil {
		log.Printf("[SEARCH] index course %d: %v", courseID, err)
	}
}

// Reindex rebuilds the index from every published course and returns the document count
func (s *Service) Reindex(ctx context.Context) (int, error) {
	var courses []models.Course
	if err := s.DB.Preload("Instructor").Preload("Category").
		Where("status = ? AND is_deleted = ?", models.CourseStatusPublished, false).
		Find(&courses).Error; err != nil {
		return 0, err
	}
	docs := make([]search.CourseDocument, 0, len(courses))
	for _, c := range courses {
		docs = append(docs, Document(c))
	}
	if err := s.Search.Reindex(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

// SearchIDs asks the index for matching course ids, or returns ok=false when the caller must fall back to SQL
func (s *Service) SearchIDs(ctx context.Context, query string, size int) ([]uint, bool) {
	if !s.Search.Enabled() {
		return nil, false
	}
	ids, err := s.Search.Search(ctx, query, size)
	if err != nil {
		log.Printf("[SEARCH] query %q failed, falling back to SQL: %v", query, err)
		return nil, false
	}
	return ids, true
}
