package blogController

import (
	"errors"
	"strings"
	"time"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services/catalog"
	"brainix/utils"
	blogValidator "brainix/validators/blog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BlogCard is a blog with its author summary
type BlogCard struct {
	models.Blog
	Author models.UserSummary `json:"author"`
}

// upsertTags finds or creates a tag per distinct slug
func upsertTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		slug := catalog.Slugify(name)
		if name == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		var tag models.Tag
		if err := tx.Where(models.Tag{Slug: slug}).Attrs(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func canManage(user models.User, blog models.Blog) bool {
	return user.ID == blog.AuthorID || user.IsAdmin()
}

// GetBlogs lists published posts, newest first
func GetBlogs(c *fiber.Ctx) error {
	reqData := c.Locals("validatedBlogList").(*blogValidator.BlogListQuery)
	db := database.Database.Db
	query := db.Model(&models.Blog{}).Where("status = ? AND is_deleted = ?", models.BlogPublished, false)

	if reqData.Tag != "" {
		query = query.Where("id IN (?)", db.Table("blog_tags").
			Select("blog_tags.blog_id").
			Joins("JOIN tags ON tags.id = blog_tags.tag_id").
			Where("tags.slug = ?", catalog.Slugify(reqData.Tag)))
	}
	if reqData.Author != 0 {
		query = query.Where("author_id = ?", reqData.Author)
	}
	if search := strings.TrimSpace(reqData.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var blogs []models.Blog
	if err := query.Preload("Tags").Preload("Author").
		Order("published_at desc").Order("id desc").
		Offset(reqData.Offset()).Limit(reqData.Limit).
		Find(&blogs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch blogs!", nil)
	}

	result := make([]BlogCard, len(blogs))
	for i, b := range blogs {
		b.Content = ""
		result[i] = BlogCard{Blog: b, Author: b.Author.Summary()}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blogs fetched successfully!",
		utils.Paginated("blogs", result, total, reqData.Page, reqData.Limit))
}

// GetBlog returns a published post, or a draft to its author or an admin
func GetBlog(c *fiber.Ctx) error {
	slug := c.Locals("slug").(string)
	db := database.Database.Db

	var blog models.Blog
	if err := db.Where("slug = ? AND is_deleted = ?", slug, false).
		Preload("Tags").Preload("Author").
		First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog post not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch blog!", nil)
	}

	if blog.Status != models.BlogPublished {
		user, ok := middleware.CurrentUser(c)
		if !ok || !canManage(user, blog) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog post not found!", nil)
		}
	} else {
		db.Model(&models.Blog{}).Where("id = ?", blog.ID).UpdateColumn("views", gorm.Expr("views + ?", 1))
		blog.Views++
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog fetched successfully!", BlogCard{Blog: blog, Author: blog.Author.Summary()})
}

// GetMyBlogs lists the caller's posts in every status
func GetMyBlogs(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	var blogs []models.Blog
	if err := database.Database.Db.Where("author_id = ? AND is_deleted = ?", userId, false).
		Preload("Tags").Order("updated_at desc").
		Find(&blogs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch blogs!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blogs fetched successfully!", blogs)
}

func CreateBlog(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedBlog").(*blogValidator.BlogRequest)
	db := database.Database.Db

	blog := models.Blog{
		AuthorID:   user.ID,
		Title:      reqData.Title,
		Excerpt:    reqData.Excerpt,
		Content:    reqData.Content,
		CoverImage: reqData.CoverImage,
		Status:     reqData.Status,
	}
	if blog.Status == "" {
		blog.Status = models.BlogDraft
	}
	if blog.Status == models.BlogPublished {
		now := time.Now()
		blog.PublishedAt = &now
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		slug, err := catalog.UniqueSlug(tx, &models.Blog{}, reqData.Title, 0)
		if err != nil {
			return err
		}
		blog.Slug = slug
		tags, err := upsertTags(tx, reqData.Tags)
		if err != nil {
			return err
		}
		blog.Tags = tags
		return tx.Create(&blog).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create blog!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Blog created successfully!", blog)
}

// ownedBlog loads the :id post and checks the caller may edit it
func ownedBlog(c *fiber.Ctx) (*models.Blog, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	blog := &models.Blog{}
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", c.Locals("id").(uint), false).First(blog).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Blog post not found!", nil)
	}
	if !canManage(user, *blog) {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the author of this post!", nil)
	}
	return blog, nil
}

func UpdateBlog(c *fiber.Ctx) error {
	blog, err := ownedBlog(c)
	if blog == nil {
		return err
	}
	reqData := c.Locals("validatedBlogUpdate").(*blogValidator.UpdateBlogRequest)
	db := database.Database.Db

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if reqData.Title != nil && *reqData.Title != blog.Title {
			updates["title"] = *reqData.Title
			if blog.PublishedAt == nil {
				slug, err := catalog.UniqueSlug(tx, &models.Blog{}, *reqData.Title, blog.ID)
				if err != nil {
					return err
				}
				updates["slug"] = slug
			}
		}
		if reqData.Excerpt != nil {
			updates["excerpt"] = *reqData.Excerpt
		}
		if reqData.Content != nil {
			updates["content"] = *reqData.Content
		}
		if reqData.CoverImage != nil {
			updates["cover_image"] = *reqData.CoverImage
		}
		if reqData.Status != nil {
			updates["status"] = *reqData.Status
			if *reqData.Status == models.BlogPublished && blog.PublishedAt == nil {
				updates["published_at"] = time.Now()
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(blog).Updates(updates).Error; err != nil {
				return err
			}
		}
		if reqData.Tags != nil {
			tags, err := upsertTags(tx, reqData.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(blog).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update blog!", nil)
	}

	db.Preload("Tags").First(blog, blog.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog updated successfully!", blog)
}

func DeleteBlog(c *fiber.Ctx) error {
	blog, err := ownedBlog(c)
	if blog == nil {
		return err
	}
	if err := database.Database.Db.Model(blog).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete blog!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Blog deleted successfully!", nil)
}
