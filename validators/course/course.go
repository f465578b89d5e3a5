package courseValidator

import (
	"brainix/middleware"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

type CourseListQuery struct {
	validators.Pagination
	Search   string `query:"search" validate:"max=100"`
	Category string `query:"category" validate:"max=191"`
	Level    string `query:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	MinPrice *int64 `query:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *int64 `query:"max_price" validate:"omitempty,gte=0"`
	Sort     string `query:"sort" validate:"omitempty,oneof=newest popular rating price_asc price_desc relevance"`
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseListQuery)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.DefaultPage()

		errors := validators.Struct(reqData)
		if errors == nil {
			errors = map[string]string{}
		}
		if reqData.MinPrice != nil && reqData.MaxPrice != nil && *reqData.MinPrice > *reqData.MaxPrice {
			errors["min_price"] = "Min price must not exceed max price!"
		}
		if reqData.Sort == "relevance" && reqData.Search == "" {
			errors["sort"] = "Relevance sorting requires a search term!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

// CourseDetail checks the slug route parameter
func CourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if slug == "" || len(slug) > 191 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course slug!", nil)
		}
		c.Locals("slug", slug)
		return c.Next()
	}
}
