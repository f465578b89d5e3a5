package courseValidator

import (
	"brainix/middleware"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

type CourseRequest struct {
	Title            string   `json:"title" validate:"required,min=3,max=200"`
	Subtitle         string   `json:"subtitle" validate:"max=255"`
	Description      string   `json:"description" validate:"max=20000"`
	CategoryID       *uint    `json:"category_id" validate:"omitempty,gt=0"`
	Level            string   `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	Language         string   `json:"language" validate:"max=40"`
	Price            *int64   `json:"price" validate:"required,gte=0"`
	DiscountPrice    *int64   `json:"discount_price" validate:"omitempty,gte=0"`
	Requirements     []string `json:"requirements" validate:"max=20,dive,max=255"`
	LearningOutcomes []string `json:"learning_outcomes" validate:"max=20,dive,max=255"`
}

// UpdateCourseRequest carries only the fields to change
type UpdateCourseRequest struct {
	Title              *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Subtitle           *string  `json:"subtitle" validate:"omitempty,max=255"`
	Description        *string  `json:"description" validate:"omitempty,max=20000"`
	CategoryID         *uint    `json:"category_id" validate:"omitempty,gt=0"`
	Level              *string  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED ALL_LEVELS"`
	Language           *string  `json:"language" validate:"omitempty,max=40"`
	Price              *int64   `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice      *int64   `json:"discount_price" validate:"omitempty,gte=0"`
	ClearDiscountPrice bool     `json:"clear_discount_price"`
	Requirements       []string `json:"requirements" validate:"omitempty,max=20,dive,max=255"`
	LearningOutcomes   []string `json:"learning_outcomes" validate:"omitempty,max=20,dive,max=255"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validators.Struct(reqData)
		if errors == nil {
			errors = map[string]string{}
		}
		if reqData.Price != nil && reqData.DiscountPrice != nil && *reqData.DiscountPrice >= *reqData.Price {
			errors["discount_price"] = "Discount price must be lower than the price!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return validators.Body[UpdateCourseRequest]("validatedCourseUpdate")
}

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Position    *int   `json:"position" validate:"omitempty,gte=0"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

func CreateModule() fiber.Handler {
	return validators.Body[ModuleRequest]("validatedModule")
}

func UpdateModule() fiber.Handler {
	return validators.Body[UpdateModuleRequest]("validatedModuleUpdate")
}

type Resource struct {
	Title string `json:"title" validate:"required,max=200"`
	URL   string `json:"url" validate:"required,url"`
}

type LessonRequest struct {
	Title         string     `json:"title" validate:"required,min=2,max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	Type          string     `json:"type" validate:"omitempty,oneof=VIDEO ARTICLE QUIZ"`
	VideoURL      string     `json:"video_url" validate:"omitempty,url"`
	Content       string     `json:"content"`
	Duration      int        `json:"duration" validate:"gte=0"`
	Position      *int       `json:"position" validate:"omitempty,gte=0"`
	IsFreePreview bool       `json:"is_free_preview"`
	Resources     []Resource `json:"resources" validate:"max=20,dive"`
}

type UpdateLessonRequest struct {
	Title         *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description   *string    `json:"description" validate:"omitempty,max=5000"`
	Type          *string    `json:"type" validate:"omitempty,oneof=VIDEO ARTICLE QUIZ"`
	VideoURL      *string    `json:"video_url" validate:"omitempty,url"`
	Content       *string    `json:"content"`
	Duration      *int       `json:"duration" validate:"omitempty,gte=0"`
	IsFreePreview *bool      `json:"is_free_preview"`
	Resources     []Resource `json:"resources" validate:"omitempty,max=20,dive"`
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := validators.Struct(reqData)
		if errors == nil {
			errors = map[string]string{}
		}
		if reqData.Type == "" {
			reqData.Type = "VIDEO"
		}
		if reqData.Type == "VIDEO" && reqData.VideoURL == "" {
			errors["video_url"] = "Video URL is required for video lessons!"
		}
		if reqData.Type == "ARTICLE" && reqData.Content == "" {
			errors["content"] = "Content is required for article lessons!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func UpdateLesson() fiber.Handler {
	return validators.Body[UpdateLessonRequest]("validatedLessonUpdate")
}

type ReorderRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

func Reorder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReorderRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		errors := validators.Struct(reqData)
		if errors == nil {
			errors = map[string]string{}
		}
		seen := make(map[uint]bool, len(reqData.IDs))
		for _, id := range reqData.IDs {
			if seen[id] {
				errors["ids"] = "Ids must not repeat!"
				break
			}
			seen[id] = true
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedReorder", reqData)
		return c.Next()
	}
}

// Thumbnail checks that a multipart file named "file" is present
func Thumbnail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "File is required!"})
		}
		c.Locals("uploadedFile", file)
		return c.Next()
	}
}
