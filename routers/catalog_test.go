package routers

import (
	"encoding/json"
	"net/http"
	"testing"

	"brainix/internal/testutils"
	"brainix/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idsOf(t *testing.T, items []interface{}) []uint {
	t.Helper()
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, uint(item.(map[string]interface{})["ID"].(float64)))
	}
	return ids
}

func listIDs(t *testing.T, raw json.RawMessage) []uint {
	t.Helper()
	var items []interface{}
	require.NoError(t, json.Unmarshal(raw, &items))
	return idsOf(t, items)
}

func listOf(t *testing.T, env envelope) []map[string]interface{} {
	t.Helper()
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Raw, &items))
	return items
}

func TestCourseListingFiltersAndSorts(t *testing.T) {
	ta := newTestApp(t)
	instructor := testutils.CreateUser(t, ta.db, models.RoleInstructor)

	category := models.Category{Name: "Programming", Slug: "programming"}
	require.NoError(t, ta.db.Create(&category).Error)

	discount := int64(500)
	rust := testutils.CreateCourse(t, ta.db, instructor.ID, testutils.CourseOptions{Price: 1000, Lessons: 1})
	design := testutils.CreateCourse(t, ta.db, instructor.ID, testutils.CourseOptions{Price: 3000, DiscountPrice: &discount, Lessons: 1})
	systems := testutils.CreateCourse(t, ta.db, instructor.ID, testutils.CourseOptions{Price: 2000, Lessons: 1})
	testutils.CreateCourse(t, ta.db, instructor.ID, testutils.CourseOptions{Price: 100, Lessons: 1, Status: models.CourseStatusDraft})

	set := func(course models.Course, updates map[string]interface{}) {
		require.NoError(t, ta.db.Model(&models.Course{}).Where("id = ?", course.ID).Updates(updates).Error)
	}
	set(rust, map[string]interface{}{
		"title": "Rust for Gophers", "category_id": category.ID, "level": models.LevelBeginner,
		"total_students": 50, "average_rating": 4.0,
	})
	set(design, map[string]interface{}{
		"title": "Product Design", "level": "ADVANCED", "total_students": 10, "average_rating": 4.8,
	})
	set(systems, map[string]interface{}{
		"title": "Systems Programming", "subtitle": "Memory safety with RUST", "level": "INTERMEDIATE",
		"total_students": 80, "average_rating": 3.0,
	})

	tests := []struct {
		name  string
		query string
		want  []uint
	}{
		{"category", "?category=programming", []uint{rust.ID}},
		{"level", "?level=ADVANCED", []uint{design.ID}},
		{"price range uses the effective price", "?min_price=600&max_price=2500&sort=price_asc", []uint{rust.ID, systems.ID}},
		{"popular", "?sort=popular", []uint{systems.ID, rust.ID, design.ID}},
		{"rating", "?sort=rating", []uint{design.ID, rust.ID, systems.ID}},
		{"price ascending", "?sort=price_asc", []uint{design.ID, rust.ID, systems.ID}},
		{"price descending", "?sort=price_desc", []uint{systems.ID, rust.ID, design.ID}},
		{"search matches title and subtitle", "?search=rust&sort=popular", []uint{systems.ID, rust.ID}},
		{"relevance ranks title hits first", "?search=Rust&sort=relevance", []uint{rust.ID, systems.ID}},
		{"search without hits", "?search=haskell", []uint{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := ta.do(t, http.MethodGet, "/courses"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, status, env.Message)
			courses, _ := env.Data["courses"].([]interface{})
			assert.Equal(t, tt.want, idsOf(t, courses))
			pagination := env.Data["pagination"].(map[string]interface{})
			assert.Equal(t, float64(len(tt.want)), pagination["total"])
		})
	}

	status, _ := ta.do(t, http.MethodGet, "/courses?sort=relevance", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = ta.do(t, http.MethodGet, "/courses?min_price=900&max_price=100", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestReorderModulesAndLessons(t *testing.T) {
	ta := newTestApp(t)
	instructor := testutils.CreateUser(t, ta.db, models.RoleInstructor)
	token := testutils.Token(t, instructor)
	course := testutils.CreateCourse(t, ta.db, instructor.ID, testutils.CourseOptions{Price: 1000, Lessons: 3})
	lessons := testutils.Lessons(t, ta.db, course.ID)
	first := lessons[0].ModuleID

	base := "/instructor/courses/" + testutils.Itoa(course.ID)
	status, env := ta.do(t, http.MethodPost, base+"/modules", token, fiber.Map{"title": "Advanced"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	second := uint(env.Data["ID"].(float64))
	assert.Equal(t, float64(2), env.Data["position"])

	modules := base + "/modules/reorder"
	tests := []struct {
		name   string
		ids    []uint
		status int
	}{
		{"missing module", []uint{second}, http.StatusBadRequest},
		{"foreign module", []uint{second, 9999}, http.StatusBadRequest},
		{"duplicate module", []uint{second, second}, http.StatusBadRequest},
		{"full set", []uint{second, first}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run("modules "+tt.name, func(t *testing.T) {
			status, env := ta.do(t, http.MethodPut, modules, token, fiber.Map{"ids": tt.ids})
			assert.Equal(t, tt.status, status, env.Message)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.ids, listIDs(t, env.Raw))
			}
		})
	}

	reordered := []uint{lessons[2].ID, lessons[0].ID, lessons[1].ID}
	lessonPath := "/instructor/modules/" + testutils.Itoa(first) + "/lessons/reorder"
	status, _ = ta.do(t, http.MethodPut, lessonPath, token, fiber.Map{"ids": reordered[:2]})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = ta.do(t, http.MethodPut, lessonPath, token, fiber.Map{"ids": reordered})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, reordered, listIDs(t, env.Raw))

	current := testutils.Lessons(t, ta.db, course.ID)
	assert.Equal(t, reordered, []uint{current[0].ID, current[1].ID, current[2].ID})

	other := testutils.CreateUser(t, ta.db, models.RoleInstructor)
	status, _ = ta.do(t, http.MethodPut, lessonPath, testutils.Token(t, other), fiber.Map{"ids": reordered})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestLessonDeletionCompletesEnrollment(t *testing.T) {
	ta := newTestApp(t)
	instructor := testutils.CreateUser(t, ta.db, models.RoleInstructor)
	student := testutils.CreateUser(t, ta.db, models.RoleStudent)
	course := testutils.CreateCourse(t, ta.db, instructor.ID, testutils.CourseOptions{Price: 1000, Lessons: 2})
	enrollment := testutils.Enroll(t, ta.db, student.ID, course.ID)
	lessons := testutils.Lessons(t, ta.db, course.ID)

	status, _ := ta.do(t, http.MethodPost, "/progress", testutils.Token(t, student), fiber.Map{"lesson_id": lessons[0].ID, "is_completed": true})
	require.Equal(t, http.StatusOK, status)

	status, env := ta.do(t, http.MethodDelete, "/instructor/lessons/"+testutils.Itoa(lessons[1].ID), testutils.Token(t, instructor), nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	var reloaded models.Enrollment
	require.NoError(t, ta.db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 100.0, reloaded.ProgressPercent)
	assert.Equal(t, 1, reloaded.CompletedLessons)
	assert.Equal(t, models.EnrollmentCompleted, reloaded.Status)

	var certs int64
	ta.db.Model(&models.Certificate{}).Where("enrollment_id = ?", enrollment.ID).Count(&certs)
	assert.Equal(t, int64(1), certs)

	// a new lesson lowers the percentage again
	status, env = ta.do(t, http.MethodPost, "/instructor/modules/"+testutils.Itoa(lessons[0].ModuleID)+"/lessons", testutils.Token(t, instructor), fiber.Map{
		"title": "Epilogue", "type": models.LessonTypeArticle, "content": "Thanks for watching",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	require.NoError(t, ta.db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 50.0, reloaded.ProgressPercent)
	assert.Equal(t, models.EnrollmentCompleted, reloaded.Status)
}
