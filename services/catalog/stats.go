package catalog

import (
	"log"
	"math"

	"brainix/models"

	"gorm.io/gorm"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecomputeCourseTotals refreshes TotalLessons and TotalDuration from the live lessons
func RecomputeCourseTotals(db *gorm.DB, courseID uint) error {
	var row struct {
		Lessons  int
		Duration int
	}
	if err := db.Model(&models.Lesson{}).
		Select("COUNT(*) AS lessons, COALESCE(SUM(duration), 0) AS duration").
		Where("course_id = ?", courseID).
		Scan(&row).Error; err != nil {
		return err
	}
	return db.Model(&models.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"total_lessons":  row.Lessons,
		"total_duration": row.Duration,
	}).Error
}

// RecomputeRatings refreshes the course rating and the instructor's average across all courses
func RecomputeRatings(db *gorm.DB, courseID uint) error {
	var row struct {
		Average float64
		Count   int
	}
	if err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("course_id = ?", courseID).
		Scan(&row).Error; err != nil {
		return err
	}

	var course models.Course
	if err := db.Select("id", "instructor_id").First(&course, courseID).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
		"average_rating": round2(row.Average),
		"review_count":   row.Count,
	}).Error; err != nil {
		return err
	}

	rating, err := instructorRating(db, course.InstructorID)
	if err != nil {
		return err
	}
	return db.Model(&models.InstructorProfile{}).
		Where("user_id = ?", course.InstructorID).
		Update("average_rating", rating).Error
}

func instructorRating(db *gorm.DB, instructorID uint) (float64, error) {
	var avg float64
	err := db.Model(&models.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0)").
		Joins("JOIN courses ON courses.id = reviews.course_id").
		Where("courses.instructor_id = ? AND courses.is_deleted = ?", instructorID, false).
		Scan(&avg).Error
	return round2(avg), err
}

// InstructorStats is the reconciled view of an instructor's catalog and sales
type InstructorStats struct {
	TotalCourses  int
	TotalStudents int
	TotalRevenue  int64
	AverageRating float64
}

// ComputeInstructorStats derives the stats of one instructor from source tables
func ComputeInstructorStats(db *gorm.DB, instructorID uint) (InstructorStats, error) {
	var stats InstructorStats
	var courses, students int64

	if err := db.Model(&models.Course{}).
		Where("instructor_id = ? AND status = ? AND is_deleted = ?", instructorID, models.CourseStatusPublished, false).
		Count(&courses).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ? AND enrollments.status <> ?", instructorID, models.EnrollmentRefunded).
		Count(&students).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.price), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.instructor_id = ? AND orders.status = ?", instructorID, models.OrderCompleted).
		Scan(&stats.TotalRevenue).Error; err != nil {
		return stats, err
	}
	rating, err := instructorRating(db, instructorID)
	if err != nil {
		return stats, err
	}

	stats.TotalCourses = int(courses)
	stats.TotalStudents = int(students)
	stats.AverageRating = rating
	return stats, nil
}

// ReconcileInstructorStats rewrites every instructor profile from source tables and returns how many changed
func ReconcileInstructorStats(db *gorm.DB) (int, error) {
	var profiles []models.InstructorProfile
	if err := db.Find(&profiles).Error; err != nil {
		return 0, err
	}

	changed := 0
	for _, p := range profiles {
		stats, err := ComputeInstructorStats(db, p.UserID)
		if err != nil {
			log.Printf("[RECONCILE] instructor %d: %v", p.UserID, err)
			continue
		}
		if p.TotalCourses == stats.TotalCourses && p.TotalStudents == stats.TotalStudents &&
			p.TotalRevenue == stats.TotalRevenue && p.AverageRating == stats.AverageRating {
			continue
		}
		if err := db.Model(&models.InstructorProfile{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"total_courses":  stats.TotalCourses,
			"total_students": stats.TotalStudents,
			"total_revenue":  stats.TotalRevenue,
			"average_rating": stats.AverageRating,
		}).Error; err != nil {
			log.Printf("[RECONCILE] instructor %d update failed: %v", p.UserID, err)
			continue
		}
		changed++
	}
	return changed, nil
}
