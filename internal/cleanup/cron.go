package cleanup

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
)

// SetupCron schedules the daily sweep at 5 AM in the configured location.
func SetupCron(location string, svc *Service) *cron.Cron {
	loc, err := time.LoadLocation(location)
	if err != nil {
		log.Printf("Unknown cron location %q, falling back to UTC: %v", location, err)
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc("0 5 * * *", svc.RunJob); err != nil {
		log.Fatalf("Failed to add cleanup cron job: %v", err)
	}

	c.Start()
	log.Printf("Cleanup cron job scheduled to run at 5 AM %s", loc)
	return c
}

// MountController mounts the manual trigger for the sweep.
func MountController(router fiber.Router, svc *Service) {
	router.Post("/cleanup/run", func(c *fiber.Ctx) error {
		go svc.RunJob()
		return c.JSON(fiber.Map{
			"message": "Cleanup run started",
		})
	})
}
