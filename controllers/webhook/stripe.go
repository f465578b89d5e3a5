package webhookController

import (
	"errors"
	"log"

	"brainix/apperrors"
	"brainix/config"
	"brainix/middleware"
	"brainix/models"
	"brainix/services"
	"brainix/services/payments"

	"github.com/gofiber/fiber/v2"
)

// StripeWebhook verifies and applies a Stripe event
func StripeWebhook(c *fiber.Ctx) error {
	body := c.Body()
	secret := config.AppConfig.StripeWebhookSecret
	if secret == "" {
		log.Println("[STRIPE-WEBHOOK] rejected: STRIPE_WEBHOOK_SECRET is not configured")
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Webhook signing secret is not configured!", nil)
	}
	if err := payments.VerifySignature(body, c.Get("Stripe-Signature"), secret); err != nil {
		log.Printf("[STRIPE-WEBHOOK] rejected: %v", err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid signature!", nil)
	}

	event, err := payments.ParseEvent(body)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid event payload!", nil)
	}

	done, err := alreadyProcessed(models.ProviderStripe, event.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
	}
	if done {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event already processed!", nil)
	}

	if err := applyStripeEvent(c, event); err != nil {
		if errors.Is(err, apperrors.ErrOrderNotFound) {
			// not ours, retrying cannot help
			log.Printf("[STRIPE-WEBHOOK] %s %s: no matching order", event.Type, event.ID)
		} else {
			log.Printf("[STRIPE-WEBHOOK] %s %s failed: %v", event.Type, event.ID, err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", nil)
		}
	}

	markProcessed(models.ProviderStripe, event.ID, event.Type, body)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Event processed!", nil)
}

func applyStripeEvent(c *fiber.Ctx, event *payments.Event) error {
	orders := services.App.Orders
	switch event.Type {
	case payments.EventPaymentSucceeded:
		intent, err := event.PaymentIntent()
		if err != nil {
			return err
		}
		return orders.PaymentSucceeded(c.UserContext(), intent)
	case payments.EventPaymentFailed, payments.EventPaymentCanceled:
		intent, err := event.PaymentIntent()
		if err != nil {
			return err
		}
		status := models.OrderFailed
		if event.Type == payments.EventPaymentCanceled {
			status = models.OrderCancelled
		}
		return orders.PaymentUnsuccessful(intent, status)
	case payments.EventChargeRefunded:
		charge, err := event.Charge()
		if err != nil {
			return err
		}
		return orders.ChargeRefunded(c.UserContext(), charge)
	default:
		log.Printf("[STRIPE-WEBHOOK] ignoring event type %s", event.Type)
		return nil
	}
}
