package webhookRoutes

import (
	webhookController "brainix/controllers/webhook"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes mounts the provider callbacks; they authenticate by signature, not session
func SetupWebhookRoutes(app *fiber.App) {
	webhookGroup := app.Group("/webhooks")

	webhookGroup.Post("/stripe", webhookController.StripeWebhook)
	webhookGroup.Post("/clerk", webhookController.ClerkWebhook)
}
