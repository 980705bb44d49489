package screenshot

import (
	"log"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	svc *Service
}

func MountController(router fiber.Router, svc *Service) {
	ctl := &Controller{svc: svc}
	router.Get("/screenshot", ctl.Get)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	if !ctl.svc.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "screenshot capture is not available",
		})
	}

	url := c.Query("url")
	if err := v.Validate(url, v.Required, is.URL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url: " + err.Error(),
		})
	}

	img, err := ctl.svc.Capture(url)
	if err != nil {
		log.Printf("Screenshot of %s failed: %v", url, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(img)
}
