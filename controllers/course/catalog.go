package controllers

import (
	"errors"
	"sort"
	"strings"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/catalog"
	"brainix/utils"
	courseValidator "brainix/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxSearchHits caps how many ids the search index may return for one listing
const maxSearchHits = 500

const effectivePriceSQL = "CASE WHEN discount_price IS NOT NULL AND discount_price >= 0 AND discount_price < price THEN discount_price ELSE price END"

// CourseCard is the listing projection of a course
type CourseCard struct {
	models.Course
	EffectivePrice int64              `json:"effective_price"`
	Instructor     models.UserSummary `json:"instructor"`
}

func card(course models.Course) CourseCard {
	return CourseCard{Course: course, EffectivePrice: course.EffectivePrice(), Instructor: course.Instructor.Summary()}
}

// GetCategories lists every category with its number of published courses
func GetCategories(c *fiber.Ctx) error {
	type CategoryWithCount struct {
		models.Category
		CourseCount int64 `json:"course_count"`
	}

	var categories []models.Category
	if err := database.Database.Db.Order("name asc").Find(&categories).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch categories!", nil)
	}

	type countRow struct {
		CategoryID uint
		Total      int64
	}
	var rows []countRow
	database.Database.Db.Model(&models.Course{}).
		Select("category_id, COUNT(*) AS total").
		Where("status = ? AND is_deleted = ? AND category_id IS NOT NULL", models.CourseStatusPublished, false).
		Group("category_id").
		Scan(&rows)
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Total
	}

	result := make([]CategoryWithCount, len(categories))
	for i, category := range categories {
		result[i] = CategoryWithCount{Category: category, CourseCount: counts[category.ID]}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", result)
}

// GetCourses lists published courses with filters, search and sorting
func GetCourses(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourseList").(*courseValidator.CourseListQuery)
	db := database.Database.Db.Model(&models.Course{}).
		Where("status = ? AND is_deleted = ?", models.CourseStatusPublished, false)

	if reqData.Category != "" {
		db = db.Where("category_id IN (?)", database.Database.Db.Model(&models.Category{}).Select("id").Where("slug = ?", reqData.Category))
	}
	if reqData.Level != "" {
		db = db.Where("level = ?", reqData.Level)
	}
	if reqData.MinPrice != nil {
		db = db.Where(effectivePriceSQL+" >= ?", *reqData.MinPrice)
	}
	if reqData.MaxPrice != nil {
		db = db.Where(effectivePriceSQL+" <= ?", *reqData.MaxPrice)
	}

	var ranked []uint
	search := strings.TrimSpace(reqData.Search)
	like := "%" + strings.ToLower(search) + "%"
	if search != "" {
		ids, ok := services.App.Catalog.SearchIDs(c.UserContext(), search, maxSearchHits)
		if ok {
			if len(ids) == 0 {
				return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!",
					utils.Paginated("courses", []CourseCard{}, 0, reqData.Page, reqData.Limit))
			}
			ranked = ids
			db = db.Where("id IN ?", ids)
		} else {
			db = db.Where("LOWER(title) LIKE ? OR LOWER(subtitle) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	query := db.Preload("Instructor").Preload("Category")
	var courses []models.Course

	if reqData.Sort == "relevance" && ranked != nil {
		// the index already ordered the hits, so page in memory
		if err := query.Find(&courses).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
		}
		rank := make(map[uint]int, len(ranked))
		for i, id := range ranked {
			rank[id] = i
		}
		sort.SliceStable(courses, func(i, j int) bool { return rank[courses[i].ID] < rank[courses[j].ID] })
		start := reqData.Offset()
		if start > len(courses) {
			start = len(courses)
		}
		end := start + reqData.Limit
		if end > len(courses) {
			end = len(courses)
		}
		courses = courses[start:end]
	} else {
		switch reqData.Sort {
		case "popular":
			query = query.Order("total_students desc").Order("id desc")
		case "rating":
			query = query.Order("average_rating desc").Order("review_count desc").Order("id desc")
		case "price_asc":
			query = query.Order(effectivePriceSQL + " asc").Order("id desc")
		case "price_desc":
			query = query.Order(effectivePriceSQL + " desc").Order("id desc")
		case "relevance":
			query = query.Order(clause.OrderBy{Expression: clause.Expr{
				SQL:                "CASE WHEN LOWER(title) LIKE ? THEN 0 ELSE 1 END",
				Vars:               []interface{}{like},
				WithoutParentheses: true,
			}}).Order("total_students desc")
		default:
			query = query.Order("published_at desc").Order("id desc")
		}
		if err := query.Offset(reqData.Offset()).Limit(reqData.Limit).Find(&courses).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
		}
	}

	result := make([]CourseCard, len(courses))
	for i, course := range courses {
		result[i] = card(course)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!",
		utils.Paginated("courses", result, total, reqData.Page, reqData.Limit))
}

// InstructorSummary is the instructor block of a course detail page
type InstructorSummary struct {
	models.UserSummary
	Headline      string  `json:"headline"`
	Bio           string  `json:"bio"`
	TotalCourses  int     `json:"total_courses"`
	TotalStudents int     `json:"total_students"`
	AverageRating float64 `json:"average_rating"`
}

func instructorSummary(user models.User) InstructorSummary {
	summary := InstructorSummary{UserSummary: user.Summary()}
	if p := user.InstructorProfile; p != nil {
		summary.Headline = p.Headline
		summary.Bio = p.Bio
		summary.TotalCourses = p.TotalCourses
		summary.TotalStudents = p.TotalStudents
		summary.AverageRating = p.AverageRating
	}
	return summary
}

// GetCourseDetail returns a course page; playable content is withheld from callers without access
func GetCourseDetail(c *fiber.Ctx) error {
	slug := c.Locals("slug").(string)
	db := database.Database.Db

	var course models.Course
	err := db.Where("slug = ? AND is_deleted = ?", slug, false).
		Preload("Category").Preload("Instructor").Preload("Instructor.InstructorProfile").
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	var caller *models.User
	if user, ok := middleware.CurrentUser(c); ok {
		caller = &user
	}
	access, err := catalog.AccessFor(db, caller, course)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}
	if !course.IsPublished() && !access.CanManage {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	modules, err := catalog.Curriculum(db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch curriculum!", nil)
	}
	catalog.Redact(modules, access)
	course.Modules = modules

	inCart := false
	if caller != nil {
		var count int64
		db.Model(&models.CartItem{}).
			Joins("JOIN carts ON carts.id = cart_items.cart_id").
			Where("carts.user_id = ? AND cart_items.course_id = ?", caller.ID, course.ID).
			Count(&count)
		inCart = count > 0
	}

	type CourseDetail struct {
		models.Course
		EffectivePrice int64             `json:"effective_price"`
		Instructor     InstructorSummary `json:"instructor"`
	}

	data := fiber.Map{
		"course": CourseDetail{
			Course:         course,
			EffectivePrice: course.EffectivePrice(),
			Instructor:     instructorSummary(course.Instructor),
		},
	}
	if caller != nil {
		data["is_enrolled"] = access.Enrolled
		data["in_cart"] = inCart
		data["can_manage"] = access.CanManage
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", data)
}
