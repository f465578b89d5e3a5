package userController

import (
	"brainix/database"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/users"
	"brainix/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func loadUser(id uint) (*models.User, error) {
	user := &models.User{}
	err := database.Database.Db.Preload("StudentProfile").Preload("InstructorProfile").
		Where("id = ? AND is_deleted = ?", id, false).
		First(user).Error
	return user, err
}

// GetProfile returns the caller with the profiles of their role
func GetProfile(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	user, err := loadUser(userId)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

// UpdateProfile patches names on the user and the remaining fields on the role profiles
func UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedProfile").(*userValidator.ProfileRequest)
	isInstructor := user.Role == models.RoleInstructor || user.Role == models.RoleAdmin

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		names := map[string]interface{}{}
		if reqData.FirstName != nil {
			names["first_name"] = *reqData.FirstName
		}
		if reqData.LastName != nil {
			names["last_name"] = *reqData.LastName
		}
		if len(names) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(names).Error; err != nil {
				return err
			}
		}
		if err := users.EnsureProfiles(tx, user.ID, user.Role); err != nil {
			return err
		}

		student := map[string]interface{}{}
		if reqData.Interests != nil {
			student["interests"] = *reqData.Interests
		}
		if !isInstructor {
			if reqData.Headline != nil {
				student["headline"] = *reqData.Headline
			}
			if reqData.Bio != nil {
				student["bio"] = *reqData.Bio
			}
		}
		if len(student) > 0 {
			if err := tx.Model(&models.StudentProfile{}).Where("user_id = ?", user.ID).Updates(student).Error; err != nil {
				return err
			}
		}

		if !isInstructor {
			return nil
		}
		instructor := map[string]interface{}{}
		if reqData.Headline != nil {
			instructor["headline"] = *reqData.Headline
		}
		if reqData.Bio != nil {
			instructor["bio"] = *reqData.Bio
		}
		if reqData.Website != nil {
			instructor["website"] = *reqData.Website
		}
		if reqData.Expertise != nil {
			instructor["expertise"] = *reqData.Expertise
		}
		if len(instructor) == 0 {
			return nil
		}
		return tx.Model(&models.InstructorProfile{}).Where("user_id = ?", user.ID).Updates(instructor).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	updated, err := loadUser(user.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch profile!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", updated)
}

// BecomeInstructor upgrades a student; the identity provider is updated before the local row
func BecomeInstructor(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := c.Locals("validatedInstructor").(*userValidator.BecomeInstructorRequest)

	switch user.Role {
	case models.RoleAdmin:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Admins already have instructor access!", nil)
	case models.RoleInstructor:
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You are already an instructor!", nil)
	}

	updated, err := services.App.Users.ChangeRole(c.UserContext(), user, models.RoleInstructor)
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to update role!")
	}

	profile := map[string]interface{}{}
	if reqData.Headline != "" {
		profile["headline"] = reqData.Headline
	}
	if reqData.Bio != "" {
		profile["bio"] = reqData.Bio
	}
	if reqData.Website != "" {
		profile["website"] = reqData.Website
	}
	if reqData.Expertise != "" {
		profile["expertise"] = reqData.Expertise
	}
	if len(profile) > 0 {
		if err := database.Database.Db.Model(&models.InstructorProfile{}).Where("user_id = ?", user.ID).Updates(profile).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
		}
		updated, _ = loadUser(user.ID)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "You are now an instructor!", updated)
}

// GetInstructor is the public page of an instructor with their published courses
func GetInstructor(c *fiber.Ctx) error {
	db := database.Database.Db

	var instructor models.User
	if err := db.Preload("InstructorProfile").
		Where("id = ? AND is_deleted = ? AND role IN ?", c.Locals("id").(uint), false,
			[]string{models.RoleInstructor, models.RoleAdmin}).
		First(&instructor).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Instructor not found!", nil)
	}

	var courses []models.Course
	if err := db.Where("instructor_id = ? AND status = ? AND is_deleted = ?", instructor.ID, models.CourseStatusPublished, false).
		Preload("Category").
		Order("total_students desc").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	profile := fiber.Map{}
	if p := instructor.InstructorProfile; p != nil {
		// revenue stays private
		profile = fiber.Map{
			"headline":       p.Headline,
			"bio":            p.Bio,
			"website":        p.Website,
			"expertise":      p.Expertise,
			"total_courses":  p.TotalCourses,
			"total_students": p.TotalStudents,
			"average_rating": p.AverageRating,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor fetched successfully!", fiber.Map{
		"instructor": instructor.Summary(),
		"profile":    profile,
		"courses":    courses,
	})
}
