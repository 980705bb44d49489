package scraper

import (
	"log"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	scraper *Scraper
}

func MountController(router fiber.Router, scraper *Scraper) {
	ctl := &Controller{scraper: scraper}
	router.Get("/scrape", ctl.Scrape)
}

func (ctl *Controller) Scrape(c *fiber.Ctx) error {
	url := c.Query("url")
	if err := v.Validate(url, v.Required, is.URL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url: " + err.Error(),
		})
	}

	log.Printf("Scraping %s", url)
	result, err := ctl.scraper.Scrape(c.UserContext(), url)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}
