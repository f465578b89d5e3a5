package learning

import (
	"context"
	"testing"

	"brainix/apperrors"
	"brainix/internal/testutils"
	"brainix/models"
	"brainix/services/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestRecordProgressToCompletion(t *testing.T) {
	db := testutils.SetupDB(t)
	mailer := &email.Recorder{}
	svc := &Service{DB: db, Mailer: mailer, PublicURL: "http://localhost"}

	instructor := testutils.CreateUser(t, db, models.RoleInstructor)
	student := testutils.CreateUser(t, db, models.RoleStudent)
	course := testutils.CreateCourse(t, db, instructor.ID, testutils.CourseOptions{Price: 1000, Lessons: 3})
	testutils.Enroll(t, db, student.ID, course.ID)
	lessons := testutils.Lessons(t, db, course.ID)
	ctx := context.Background()

	res, err := svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[0].ID, WatchPosition: testutils.Int(42)})
	require.NoError(t, err)
	assert.Equal(t, 42, res.Progress.WatchPosition)
	assert.False(t, res.Progress.IsCompleted)
	assert.Equal(t, 0.0, res.Enrollment.ProgressPercent)
	assert.NotNil(t, res.Enrollment.LastAccessedAt)

	res, err = svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[0].ID, IsCompleted: boolPtr(true), WatchPosition: testutils.Int(60)})
	require.NoError(t, err)
	assert.True(t, res.Progress.IsCompleted)
	assert.Equal(t, 33.33, res.Enrollment.ProgressPercent)
	assert.Equal(t, 1, res.Enrollment.CompletedLessons)

	// completion is sticky, position is the latest report
	res, err = svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[0].ID, IsCompleted: boolPtr(false), WatchPosition: testutils.Int(5)})
	require.NoError(t, err)
	assert.True(t, res.Progress.IsCompleted)
	assert.Equal(t, 5, res.Progress.WatchPosition)

	var rows int64
	db.Model(&models.Progress{}).Where("lesson_id = ?", lessons[0].ID).Count(&rows)
	assert.Equal(t, int64(1), rows)

	_, err = svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[1].ID, IsCompleted: boolPtr(true)})
	require.NoError(t, err)
	res, err = svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[2].ID, IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	assert.True(t, res.CourseCompleted)
	assert.Equal(t, 100.0, res.Enrollment.ProgressPercent)
	assert.Equal(t, models.EnrollmentCompleted, res.Enrollment.Status)
	assert.NotNil(t, res.Enrollment.CompletedAt)
	require.NotNil(t, res.Certificate)
	assert.Regexp(t, `^CERT-\d{8}-[0-9A-F]{8}$`, res.Certificate.CertificateNumber)

	var profile models.StudentProfile
	require.NoError(t, db.Where("user_id = ?", student.ID).First(&profile).Error)
	assert.Equal(t, 1, profile.TotalCoursesCompleted)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, res.Certificate.CertificateNumber)

	// further reports do not issue a second certificate
	res, err = svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[2].ID, WatchPosition: testutils.Int(10)})
	require.NoError(t, err)
	assert.False(t, res.CourseCompleted)
	var certs int64
	db.Model(&models.Certificate{}).Where("user_id = ?", student.ID).Count(&certs)
	assert.Equal(t, int64(1), certs)
}

func TestRecordProgressRequiresEnrollment(t *testing.T) {
	db := testutils.SetupDB(t)
	svc := &Service{DB: db}

	instructor := testutils.CreateUser(t, db, models.RoleInstructor)
	student := testutils.CreateUser(t, db, models.RoleStudent)
	course := testutils.CreateCourse(t, db, instructor.ID, testutils.CourseOptions{Lessons: 1})
	lesson := testutils.Lessons(t, db, course.ID)[0]

	_, err := svc.RecordProgress(context.Background(), student, ProgressUpdate{LessonID: lesson.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)

	_, err = svc.RecordProgress(context.Background(), student, ProgressUpdate{LessonID: 99999})
	assert.ErrorIs(t, err, apperrors.ErrLessonNotFound)

	enrollment := testutils.Enroll(t, db, student.ID, course.ID)
	require.NoError(t, db.Model(&enrollment).Update("status", models.EnrollmentRefunded).Error)
	_, err = svc.RecordProgress(context.Background(), student, ProgressUpdate{LessonID: lesson.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
}

func TestCourseProgress(t *testing.T) {
	db := testutils.SetupDB(t)
	svc := &Service{DB: db}

	instructor := testutils.CreateUser(t, db, models.RoleInstructor)
	student := testutils.CreateUser(t, db, models.RoleStudent)
	course := testutils.CreateCourse(t, db, instructor.ID, testutils.CourseOptions{Lessons: 2})
	testutils.Enroll(t, db, student.ID, course.ID)
	lessons := testutils.Lessons(t, db, course.ID)

	_, err := svc.RecordProgress(context.Background(), student, ProgressUpdate{LessonID: lessons[1].ID, IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	enrollment, rows, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, enrollment.ProgressPercent)
	require.Len(t, rows, 1)
	assert.Equal(t, lessons[1].ID, rows[0].LessonID)
}

func TestRefreshCourseAfterCurriculumChange(t *testing.T) {
	db := testutils.SetupDB(t)
	mailer := &email.Recorder{}
	svc := &Service{DB: db, Mailer: mailer, PublicURL: "http://localhost"}

	instructor := testutils.CreateUser(t, db, models.RoleInstructor)
	student := testutils.CreateUser(t, db, models.RoleStudent)
	course := testutils.CreateCourse(t, db, instructor.ID, testutils.CourseOptions{Price: 1000, Lessons: 2})
	enrollment := testutils.Enroll(t, db, student.ID, course.ID)
	lessons := testutils.Lessons(t, db, course.ID)
	ctx := context.Background()

	_, err := svc.RecordProgress(ctx, student, ProgressUpdate{LessonID: lessons[0].ID, IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	// removing the only unfinished lesson completes the course
	require.NoError(t, db.Delete(&lessons[1]).Error)
	finished, err := svc.RefreshCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, finished)

	var reloaded models.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 100.0, reloaded.ProgressPercent)
	assert.Equal(t, 1, reloaded.CompletedLessons)
	assert.Equal(t, models.EnrollmentCompleted, reloaded.Status)

	var certs int64
	db.Model(&models.Certificate{}).Where("enrollment_id = ?", enrollment.ID).Count(&certs)
	assert.Equal(t, int64(1), certs)
	assert.Len(t, mailer.Sent(), 1)

	// a new lesson lowers the percentage but keeps the completion
	extra := models.Lesson{CourseID: course.ID, ModuleID: lessons[0].ModuleID, Title: "Bonus", Type: models.LessonTypeVideo, Position: 9}
	require.NoError(t, db.Create(&extra).Error)
	finished, err = svc.RefreshCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, finished)

	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 50.0, reloaded.ProgressPercent)
	assert.Equal(t, models.EnrollmentCompleted, reloaded.Status)
	db.Model(&models.Certificate{}).Where("enrollment_id = ?", enrollment.ID).Count(&certs)
	assert.Equal(t, int64(1), certs)
}
