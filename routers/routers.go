// Package routers assembles the fiber application.
package routers

import (
	"strings"

	"brainix/config"
	healthController "brainix/controllers/health"
	"brainix/middleware"
	"brainix/routers/blogRoutes"
	"brainix/routers/cartRoutes"
	"brainix/routers/courseRoutes"
	superAdminRoutes "brainix/routers/superAdmin"
	userProfileRoutes "brainix/routers/userRoutes"
	"brainix/routers/webhookRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the application with every route mounted
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "BrainiX",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    cfg.MaxUploadBytes + 1<<20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization",
		AllowCredentials: cfg.CORSOrigins != "*" && !strings.Contains(cfg.CORSOrigins, "*"),
	}))
	if cfg.Env != "test" {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Serve uploads stored on local disk
	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	app.Get("/health", healthController.Health)

	webhookRoutes.SetupWebhookRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupInstructorRoutes(app)
	cartRoutes.SetupCartRoutes(app)
	blogRoutes.SetupBlogRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Route not found!", nil)
	})
	return app
}
