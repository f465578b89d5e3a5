package healthController

import (
	"time"

	"brainix/database"
	"brainix/middleware"

	"github.com/gofiber/fiber/v2"
)

var startedAt = time.Now()

func Health(c *fiber.Ctx) error {
	if err := database.Ping(); err != nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Database unavailable!", fiber.Map{"database": "down"})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{
		"database": "up",
		"uptime":   time.Since(startedAt).Round(time.Second).String(),
	})
}
