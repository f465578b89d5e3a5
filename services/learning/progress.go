// Package learning tracks lesson progress, course completion and certificates.
package learning

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"brainix/apperrors"
	"brainix/models"
	"brainix/services/email"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB        *gorm.DB
	Mailer    email.Sender
	PublicURL string
}

// ProgressUpdate is one report from the player. Nil fields are left unchanged.
type ProgressUpdate struct {
	LessonID      uint
	IsCompleted   *bool
	WatchPosition *int
}

// ProgressResult is the state after an update
type ProgressResult struct {
	Progress        models.Progress     `json:"progress"`
	Enrollment      models.Enrollment   `json:"enrollment"`
	Certificate     *models.Certificate `json:"certificate,omitempty"`
	CourseCompleted bool                `json:"course_completed"`
}

// ActiveEnrollment returns the non-refunded enrollment of userID in courseID
func ActiveEnrollment(db *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{}
	err := db.Where("user_id = ? AND course_id = ? AND status IN ?", userID, courseID,
		[]string{models.EnrollmentActive, models.EnrollmentCompleted}).First(enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotEnrolled
	}
	return enrollment, err
}

// NewCertificateNumber returns "CERT-<yyyymmdd>-<8 hex>"
func NewCertificateNumber(at time.Time) string {
	return fmt.Sprintf("CERT-%s-%s", at.UTC().Format("20060102"), strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]))
}

// RecordProgress upserts the lesson progress of user and refreshes the enrollment.
// Completion is sticky; the watch position is the last value reported.
func (s *Service) RecordProgress(ctx context.Context, user models.User, update ProgressUpdate) (*ProgressResult, error) {
	var lesson models.Lesson
	if err := s.DB.First(&lesson, update.LessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLessonNotFound
		}
		return nil, err
	}
	enrollment, err := ActiveEnrollment(s.DB, user.ID, lesson.CourseID)
	if err != nil {
		return nil, err
	}

	result := &ProgressResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		progress := models.Progress{}
		if err := tx.Where(models.Progress{EnrollmentID: enrollment.ID, LessonID: lesson.ID}).
			Attrs(models.Progress{UserID: user.ID, CourseID: lesson.CourseID}).
			FirstOrInit(&progress).Error; err != nil {
			return err
		}
		if update.WatchPosition != nil && *update.WatchPosition >= 0 {
			progress.WatchPosition = *update.WatchPosition
		}
		if update.IsCompleted != nil && *update.IsCompleted && !progress.IsCompleted {
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}
		if err := tx.Save(&progress).Error; err != nil {
			return err
		}
		result.Progress = progress

		cert, first, err := refreshEnrollment(tx, *enrollment, now, true)
		if err != nil {
			return err
		}
		result.Certificate = cert
		result.CourseCompleted = first

		return tx.First(&result.Enrollment, enrollment.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if result.CourseCompleted {
		log.Printf("[LEARNING] user %d completed course %d", user.ID, lesson.CourseID)
		s.sendCompletion(user, lesson.CourseID, result.Certificate)
	}
	return result, nil
}

// refreshEnrollment recomputes the counters of enrollment from its progress rows.
// The first time the course reaches 100% the enrollment is marked COMPLETED and a
// certificate is issued. touch also bumps last_accessed_at.
func refreshEnrollment(tx *gorm.DB, enrollment models.Enrollment, now time.Time, touch bool) (*models.Certificate, bool, error) {
	completed, percent, err := completion(tx, enrollment.ID, enrollment.CourseID)
	if err != nil {
		return nil, false, err
	}

	updates := map[string]interface{}{
		"completed_lessons": completed,
		"progress_percent":  percent,
	}
	if touch {
		updates["last_accessed_at"] = now
	}
	firstCompletion := percent >= 100 && enrollment.Status == models.EnrollmentActive
	if firstCompletion {
		updates["status"] = models.EnrollmentCompleted
		updates["completed_at"] = now
	}
	if err := tx.Model(&models.Enrollment{}).Where("id = ?", enrollment.ID).Updates(updates).Error; err != nil {
		return nil, false, err
	}
	if !firstCompletion {
		return nil, false, nil
	}

	if err := tx.Model(&models.StudentProfile{}).Where("user_id = ?", enrollment.UserID).
		Update("total_courses_completed", gorm.Expr("total_courses_completed + ?", 1)).Error; err != nil {
		return nil, false, err
	}
	cert, err := issueCertificate(tx, enrollment, now)
	if err != nil {
		return nil, false, err
	}
	return cert, true, nil
}

// RefreshCourse recomputes every non-refunded enrollment of courseID after its
// curriculum changed. Students pushed to 100% complete the course. It returns
// the number of enrollments that completed.
func (s *Service) RefreshCourse(ctx context.Context, courseID uint) (int, error) {
	var enrollments []models.Enrollment
	if err := s.DB.WithContext(ctx).Where("course_id = ? AND status IN ?", courseID,
		[]string{models.EnrollmentActive, models.EnrollmentCompleted}).Find(&enrollments).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	var finished []models.Certificate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, enrollment := range enrollments {
			cert, first, err := refreshEnrollment(tx, enrollment, now, false)
			if err != nil {
				return err
			}
			if first {
				finished = append(finished, *cert)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := range finished {
		var user models.User
		if err := s.DB.First(&user, finished[i].UserID).Error; err != nil {
			log.Printf("[LEARNING] completion mail for user %d skipped: %v", finished[i].UserID, err)
			continue
		}
		log.Printf("[LEARNING] user %d completed course %d after a curriculum change", user.ID, courseID)
		s.sendCompletion(user, courseID, &finished[i])
	}
	return len(finished), nil
}

// completion counts completed live lessons against all live lessons of the course
func completion(tx *gorm.DB, enrollmentID, courseID uint) (int, float64, error) {
	var total, done int64
	if err := tx.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := tx.Model(&models.Progress{}).
		Joins("JOIN lessons ON lessons.id = progress.lesson_id AND lessons.deleted_at IS NULL").
		Where("progress.enrollment_id = ? AND progress.is_completed = ?", enrollmentID, true).
		Count(&done).Error; err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return int(done), 0, nil
	}
	percent := math.Round(float64(done)*10000/float64(total)) / 100
	if percent > 100 {
		percent = 100
	}
	return int(done), percent, nil
}

func issueCertificate(tx *gorm.DB, enrollment models.Enrollment, now time.Time) (*models.Certificate, error) {
	cert := &models.Certificate{}
	if err := tx.Where("enrollment_id = ?", enrollment.ID).Limit(1).Find(cert).Error; err != nil {
		return nil, err
	}
	if cert.ID != 0 {
		return cert, nil
	}
	cert = &models.Certificate{
		UserID:            enrollment.UserID,
		CourseID:          enrollment.CourseID,
		EnrollmentID:      enrollment.ID,
		CertificateNumber: NewCertificateNumber(now),
		IssuedAt:          now,
	}
	return cert, tx.Create(cert).Error
}

func (s *Service) sendCompletion(user models.User, courseID uint, cert *models.Certificate) {
	if s.Mailer == nil || cert == nil {
		return
	}
	var course models.Course
	if err := s.DB.Select("id", "title").First(&course, courseID).Error; err != nil {
		return
	}
	verifyURL := s.PublicURL + "/certificates/verify/" + cert.CertificateNumber
	s.Mailer.Send(email.CourseCompleted(user.FullName(), user.Email, course.Title, cert.CertificateNumber, verifyURL))
}

// CourseProgress returns the enrollment of user in courseID with its lesson progress rows
func (s *Service) CourseProgress(userID, courseID uint) (*models.Enrollment, []models.Progress, error) {
	enrollment, err := ActiveEnrollment(s.DB, userID, courseID)
	if err != nil {
		return nil, nil, err
	}
	var rows []models.Progress
	if err := s.DB.Where("enrollment_id = ?", enrollment.ID).Order("lesson_id").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	return enrollment, rows, nil
}
