package webhookController

import (
	"errors"
	"log"
	"net/http"

	"brainix/config"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/identity"
	"brainix/services/users"

	"github.com/gofiber/fiber/v2"
)

func requestHeader(c *fiber.Ctx) http.Header {
	header := http.Header{}
	for key, values := range c.GetReqHeaders() {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	return header
}

// ClerkWebhook mirrors identity provider user events into the local users table
func ClerkWebhook(c *fiber.Ctx) error {
	body := c.Body()
	header := requestHeader(c)
	secret := config.AppConfig.ClerkWebhookSecret
	if secret == "" {
		log.Println("[CLERK-WEBHOOK] rejected: CLERK_WEBHOOK_SECRET is not configured")
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Webhook signing secret is not configured!", nil)
	}

	if err := identity.Verify(secret, header, body); err != nil {
		log.Printf("[CLERK-WEBHOOK] rejected: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid signature!", nil)
	}
	eventID := header.Get("svix-id")

	event, err := identity.ParseEvent(body)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid event payload!", nil)
	}

	done, err := alreadyProcessed(models.ProviderClerk, eventID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
	}
	if done {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event already processed!", nil)
	}

	switch event.Type {
	case identity.EventUserCreated, identity.EventUserUpdated:
		data, err := event.User()
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user payload!", nil)
		}
		user, created, err := services.App.Users.Sync(data)
		if errors.Is(err, users.ErrNoEmail) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User has no email address!", nil)
		}
		if err != nil {
			log.Printf("[CLERK-WEBHOOK] sync %s failed: %v", data.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
		}
		log.Printf("[CLERK-WEBHOOK] %s user %d (%s) created=%t", event.Type, user.ID, user.ClerkID, created)
	case identity.EventUserDeleted:
		data, err := event.User()
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user payload!", nil)
		}
		if _, err := services.App.Users.Delete(data.ID); err != nil {
			log.Printf("[CLERK-WEBHOOK] delete %s failed: %v", data.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
		}
	default:
		log.Printf("[CLERK-WEBHOOK] ignoring event type %s", event.Type)
	}

	markProcessed(models.ProviderClerk, eventID, event.Type, body)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed!", nil)
}
