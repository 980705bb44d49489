package billing

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/nevisai/platform/internal/auth"
)

type Controller struct {
	svc *Service
}

// MountController registers the authenticated checkout route.
func MountController(router fiber.Router, svc *Service) {
	ctl := &Controller{svc: svc}
	router.Post("/billing/checkout", ctl.Checkout)
}

// MountWebhook registers the Stripe callback. It belongs on the app root,
// ahead of the auth middleware, because Stripe authenticates with its own
// signature header.
func MountWebhook(router fiber.Router, svc *Service) {
	ctl := &Controller{svc: svc}
	router.Post("/billing/webhook", ctl.Webhook)
}

func (ctl *Controller) Checkout(c *fiber.Ctx) error {
	if !ctl.svc.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "billing is not configured"})
	}

	var body CheckoutBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID, err := auth.UserID(c, body.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	sess, err := ctl.svc.Checkout(userID, auth.Email(c), body.Pack)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"session_id": sess.ID, "url": sess.URL})
}

func (ctl *Controller) Webhook(c *fiber.Ctx) error {
	if !ctl.svc.WebhookEnabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "billing webhook is not configured"})
	}

	// Endpoints are often pinned to an older API version than the SDK, so
	// only the signature is checked strictly.
	event, err := webhook.ConstructEventWithOptions(
		c.Body(), c.Get("Stripe-Signature"), ctl.svc.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed session payload"})
		}
		if _, err := ctl.svc.RecordCheckout(c.UserContext(), event.ID, &sess); err != nil {
			// Non-2xx makes Stripe redeliver the event later.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	default:
		log.Printf("Ignoring stripe event %s (%s)", event.ID, event.Type)
	}

	return c.JSON(fiber.Map{"received": true})
}
