package blogValidator

import (
	"brainix/middleware"
	"brainix/validators"

	"github.com/gofiber/fiber/v2"
)

type BlogListQuery struct {
	validators.Pagination
	Tag    string `query:"tag" validate:"max=64"`
	Search string `query:"search" validate:"max=100"`
	Author uint   `query:"author"`
}

func BlogList() fiber.Handler {
	return validators.Query[BlogListQuery]("validatedBlogList", func(q *BlogListQuery) { q.DefaultPage() })
}

type BlogRequest struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Excerpt    string   `json:"excerpt" validate:"max=500"`
	Content    string   `json:"content" validate:"required,min=10"`
	CoverImage string   `json:"cover_image" validate:"omitempty,url"`
	Status     string   `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Tags       []string `json:"tags" validate:"max=10,dive,min=1,max=64"`
}

type UpdateBlogRequest struct {
	Title      *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Excerpt    *string  `json:"excerpt" validate:"omitempty,max=500"`
	Content    *string  `json:"content" validate:"omitempty,min=10"`
	CoverImage *string  `json:"cover_image" validate:"omitempty,url"`
	Status     *string  `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED"`
	Tags       []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=64"`
}

func CreateBlog() fiber.Handler {
	return validators.Body[BlogRequest]("validatedBlog")
}

func UpdateBlog() fiber.Handler {
	return validators.Body[UpdateBlogRequest]("validatedBlogUpdate")
}

type CommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	ParentID *uint  `json:"parent_id" validate:"omitempty,gt=0"`
}

func CreateComment() fiber.Handler {
	return validators.Body[CommentRequest]("validatedComment")
}

func BlogSlug() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")
		if slug == "" || len(slug) > 191 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid blog slug!", nil)
		}
		c.Locals("slug", slug)
		return c.Next()
	}
}
