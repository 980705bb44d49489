package overlay

import (
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	svc *Service
}

func MountController(router fiber.Router, svc *Service) {
	ctl := &Controller{svc: svc}
	router.Post("/overlay-text", ctl.Overlay)
}

func (ctl *Controller) Overlay(c *fiber.Ctx) error {
	var body OverlayBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	imageURL, err := ctl.svc.Render(c.UserContext(), body.ImageURL, body.Text, body.Options)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"image_url": imageURL,
		"message":   "Text overlay completed successfully",
	})
}
