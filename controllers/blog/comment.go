package blogController

import (
	"time"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	blogValidator "brainix/validators/blog"

	"github.com/gofiber/fiber/v2"
)

// CommentView is a comment with its author; top level comments carry their replies
type CommentView struct {
	ID        uint               `json:"id"`
	ParentID  *uint              `json:"parent_id"`
	Content   string             `json:"content"`
	User      models.UserSummary `json:"user"`
	CreatedAt time.Time          `json:"created_at"`
	Replies   []CommentView      `json:"replies,omitempty"`
}

func commentView(comment models.BlogComment) CommentView {
	return CommentView{
		ID:        comment.ID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		User:      comment.User.Summary(),
		CreatedAt: comment.CreatedAt,
	}
}

func publishedBlog(id uint) (*models.Blog, bool) {
	blog := &models.Blog{}
	err := database.Database.Db.Where("id = ? AND status = ? AND is_deleted = ?", id, models.BlogPublished, false).First(blog).Error
	return blog, err == nil
}

// GetComments returns the comment threads of a published post, oldest first
func GetComments(c *fiber.Ctx) error {
	blog, ok := publishedBlog(c.Locals("id").(uint))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog post not found!", nil)
	}

	var comments []models.BlogComment
	if err := database.Database.Db.Where("blog_id = ? AND is_deleted = ?", blog.ID, false).
		Preload("User").Order("created_at asc").Order("id asc").
		Find(&comments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch comments!", nil)
	}

	threads := []CommentView{}
	index := map[uint]int{}
	for _, comment := range comments {
		if comment.ParentID == nil {
			index[comment.ID] = len(threads)
			threads = append(threads, commentView(comment))
		}
	}
	for _, comment := range comments {
		if comment.ParentID == nil {
			continue
		}
		if i, ok := index[*comment.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, commentView(comment))
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comments fetched successfully!", fiber.Map{
		"comments": threads,
		"total":    len(comments),
	})
}

// CreateComment adds a comment; replies to a reply join the top level thread
func CreateComment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedComment").(*blogValidator.CommentRequest)

	blog, ok := publishedBlog(c.Locals("id").(uint))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog post not found!", nil)
	}
	db := database.Database.Db

	comment := models.BlogComment{BlogID: blog.ID, UserID: user.ID, Content: reqData.Content}
	if reqData.ParentID != nil {
		var parent models.BlogComment
		if err := db.Where("id = ? AND is_deleted = ?", *reqData.ParentID, false).First(&parent).Error; err != nil || parent.BlogID != blog.ID {
			return middleware.ValidationErrorResponse(c, map[string]string{"parent_id": "Parent comment does not belong to this post!"})
		}
		parentID := parent.ID
		if parent.ParentID != nil {
			parentID = *parent.ParentID
		}
		comment.ParentID = &parentID
	}

	if err := db.Create(&comment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create comment!", nil)
	}
	comment.User = user
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Comment created successfully!", commentView(comment))
}

func DeleteComment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	var comment models.BlogComment
	if err := db.Where("id = ? AND is_deleted = ?", c.Locals("id").(uint), false).First(&comment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Comment not found!", nil)
	}
	if comment.UserID != user.ID && !user.IsAdmin() {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot delete this comment!", nil)
	}

	if err := db.Model(&comment).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete comment!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment deleted successfully!", nil)
}
