package catalog

import (
	"errors"

	"brainix/apperrors"
	"brainix/models"

	"gorm.io/gorm"
)

// Access describes what a caller may see of a course
type Access struct {
	Enrolled  bool `json:"is_enrolled"`
	CanManage bool `json:"can_manage"`
}

// Full reports whether lesson media and content may be returned
func (a Access) Full() bool {
	return a.Enrolled || a.CanManage
}

// AccessFor resolves the access of user (nil when anonymous) to course
func AccessFor(db *gorm.DB, user *models.User, course models.Course) (Access, error) {
	var access Access
	if user == nil {
		return access, nil
	}
	access.CanManage = user.ID == course.InstructorID || user.IsAdmin()

	var count int64
	err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status IN ?", user.ID, course.ID,
			[]string{models.EnrollmentActive, models.EnrollmentCompleted}).
		Count(&count).Error
	access.Enrolled = count > 0
	return access, err
}

// Curriculum loads the modules and lessons of a course in position order
func Curriculum(db *gorm.DB, courseID uint) ([]models.Module, error) {
	var modules []models.Module
	err := db.Where("course_id = ?", courseID).
		Order("position asc, id asc").
		Preload("Lessons", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc, id asc") }).
		Find(&modules).Error
	return modules, err
}

// Redact strips every lesson the caller may not play
func Redact(modules []models.Module, access Access) {
	if access.Full() {
		return
	}
	for i := range modules {
		for j := range modules[i].Lessons {
			if !modules[i].Lessons[j].IsFreePreview {
				modules[i].Lessons[j].Redact()
			}
		}
	}
}

// OwnedCourse loads a live course and checks that user may manage it
func OwnedCourse(db *gorm.DB, user models.User, courseID uint) (*models.Course, error) {
	course := &models.Course{}
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, err
	}
	if course.InstructorID != user.ID && !user.IsAdmin() {
		return nil, apperrors.ErrNotCourseOwner
	}
	return course, nil
}

// RefreshInstructorCourses recounts the published courses of an instructor
func RefreshInstructorCourses(db *gorm.DB, instructorID uint) error {
	var count int64
	if err := db.Model(&models.Course{}).
		Where("instructor_id = ? AND status = ? AND is_deleted = ?", instructorID, models.CourseStatusPublished, false).
		Count(&count).Error; err != nil {
		return err
	}
	return db.Model(&models.InstructorProfile{}).Where("user_id = ?", instructorID).Update("total_courses", count).Error
}
