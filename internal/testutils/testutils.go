// Package testutils provides an in-memory database and fixtures for tests.
package testutils

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"brainix/config"
	"brainix/database"
	"brainix/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const JWTSecret = "test-secret"

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// Config returns a configuration with every external service disabled
func Config() *config.Config {
	return &config.Config{
		Port:             "0",
		Env:              "test",
		PublicURL:        "http://localhost:3000",
		CORSOrigins:      "*",
		DBDriver:         "sqlite",
		JWTSecret:        JWTSecret,
		StripeAPIURL:     "http://stripe.invalid",
		ClerkAPIURL:      "http://clerk.invalid",
		Currency:         "usd",
		EmailSender:      "noreply@brainix.test",
		EmailSenderName:  "BrainiX",
		MaxUploadBytes:   1 << 20,
		ElasticIndex:     "courses",
		PendingOrderTTL:  24 * time.Hour,
		SchedulerEnabled: false,
	}
}

// SetupDB opens a private in-memory database, migrates it and installs it as the global handle
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()
	if config.AppConfig == nil {
		config.AppConfig = Config()
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, next())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	database.Database = database.DbInstance{Db: db}
	return db
}

// CreateUser inserts a user with the profile matching role
func CreateUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	n := next()
	user := models.User{
		ClerkID:   fmt.Sprintf("user_%d", n),
		Email:     fmt.Sprintf("user%d@example.com", n),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", n),
		Role:      role,
	}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.StudentProfile{UserID: user.ID}).Error)
	if role == models.RoleInstructor || role == models.RoleAdmin {
		require.NoError(t, db.Create(&models.InstructorProfile{UserID: user.ID}).Error)
	}
	return user
}

// CourseOptions tunes CreateCourse
type CourseOptions struct {
	Price         int64
	DiscountPrice *int64
	Status        string
	Lessons       int
	FreePreview   bool
}

// CreateCourse inserts a course with one module of opts.Lessons lessons of 60 seconds each
func CreateCourse(t *testing.T, db *gorm.DB, instructorID uint, opts CourseOptions) models.Course {
	t.Helper()
	if opts.Status == "" {
		opts.Status = models.CourseStatusPublished
	}
	n := next()
	now := time.Now()
	course := models.Course{
		InstructorID:     instructorID,
		Title:            fmt.Sprintf("Course %d", n),
		Slug:             fmt.Sprintf("course-%d", n),
		Description:      "A course used in tests",
		Level:            models.LevelBeginner,
		Language:         "English",
		Price:            opts.Price,
		DiscountPrice:    opts.DiscountPrice,
		Status:           opts.Status,
		Requirements:     datatypes.JSON(`[]`),
		LearningOutcomes: datatypes.JSON(`[]`),
	}
	if opts.Status == models.CourseStatusPublished {
		course.PublishedAt = &now
	}
	require.NoError(t, db.Create(&course).Error)

	module := models.Module{CourseID: course.ID, Title: "Module 1", Position: 1}
	require.NoError(t, db.Create(&module).Error)
	for i := 0; i < opts.Lessons; i++ {
		lesson := models.Lesson{
			CourseID:      course.ID,
			ModuleID:      module.ID,
			Title:         fmt.Sprintf("Lesson %d", i+1),
			Type:          models.LessonTypeVideo,
			VideoURL:      fmt.Sprintf("https://cdn.example.com/%d/%d.mp4", course.ID, i+1),
			Duration:      60,
			Position:      i + 1,
			IsFreePreview: opts.FreePreview && i == 0,
		}
		require.NoError(t, db.Create(&lesson).Error)
	}
	require.NoError(t, db.Model(&course).Updates(map[string]interface{}{
		"total_lessons":  opts.Lessons,
		"total_duration": opts.Lessons * 60,
	}).Error)
	course.TotalLessons = opts.Lessons
	course.TotalDuration = opts.Lessons * 60
	return course
}

// Enroll inserts an active enrollment
func Enroll(t *testing.T, db *gorm.DB, userID, courseID uint) models.Enrollment {
	t.Helper()
	enrollment := models.Enrollment{UserID: userID, CourseID: courseID, Status: models.EnrollmentActive}
	require.NoError(t, db.Create(&enrollment).Error)
	return enrollment
}

// Lessons returns the course lessons ordered by position
func Lessons(t *testing.T, db *gorm.DB, courseID uint) []models.Lesson {
	t.Helper()
	var lessons []models.Lesson
	require.NoError(t, db.Where("course_id = ?", courseID).Order("position").Find(&lessons).Error)
	return lessons
}

// Token signs an HS256 session token for user with the test secret
func Token(t *testing.T, user models.User) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ClerkID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	require.NoError(t, err)
	return signed
}

func Int64(v int64) *int64 { return &v }
func Int(v int) *int       { return &v }

func Itoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }
