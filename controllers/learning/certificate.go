package learningController

import (
	"errors"

	"brainix/database"
	"brainix/middleware"
	"brainix/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func GetCertificates(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var certificates []models.Certificate
	if err := database.Database.Db.Where("user_id = ?", userId).
		Preload("Course").
		Order("issued_at desc").
		Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// VerifyCertificate is public: anyone holding a number can check who earned it
func VerifyCertificate(c *fiber.Ctx) error {
	number := c.Locals("certificateNumber").(string)

	var certificate models.Certificate
	err := database.Database.Db.Where("certificate_number = ?", number).
		Preload("Course").Preload("Course.Instructor").Preload("User").
		First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify certificate!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", fiber.Map{
		"certificate_number": certificate.CertificateNumber,
		"issued_at":          certificate.IssuedAt,
		"student_name":       certificate.User.FullName(),
		"course_title":       certificate.Course.Title,
		"course_slug":        certificate.Course.Slug,
		"instructor_name":    certificate.Course.Instructor.FullName(),
	})
}
