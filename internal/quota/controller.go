package quota

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/models"
)

// UserSource resolves the account row so the handler can report the tier
// limit next to the counter value. Satisfied by credits.Service.
type UserSource interface {
	EnsureUser(ctx context.Context, userID, email string) (*models.User, error)
}

type Controller struct {
	svc   *Service
	users UserSource
}

func MountController(router fiber.Router, svc *Service, users UserSource) {
	ctl := &Controller{svc: svc, users: users}
	router.Get("/quota/:user_id", ctl.Get)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	target := c.Params("user_id")
	caller, err := auth.UserID(c, target)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	if !auth.IsService(c) && caller != target {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "cannot read another user's quota"})
	}

	user, err := ctl.users.EnsureUser(c.UserContext(), target, auth.Email(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	usage, err := ctl.svc.Usage(c.UserContext(), target)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	limit := TierLimit(user.Tier)
	remaining := limit - usage
	if remaining < 0 {
		remaining = 0
	}
	return c.JSON(fiber.Map{
		"user_id":       target,
		"current_usage": usage,
		"monthly_limit": limit,
		"remaining":     remaining,
		"month":         ctl.svc.Month(),
	})
}
