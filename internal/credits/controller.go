package credits

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/models"
	"github.com/nevisai/platform/internal/quota"
)

// AccountSource resolves (creating on first sight) the account row.
type AccountSource interface {
	EnsureUser(ctx context.Context, userID, email string) (*models.User, error)
}

// UsageSource reports the user's generation count for the current month.
type UsageSource interface {
	Usage(ctx context.Context, userID string) (int, error)
}

type Controller struct {
	accounts AccountSource
	usage    UsageSource
}

func MountController(router fiber.Router, accounts AccountSource, usage UsageSource) {
	ctl := &Controller{accounts: accounts, usage: usage}
	router.Get("/credits/:user_id", ctl.Get)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	target := c.Params("user_id")
	caller, err := auth.UserID(c, target)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	if !auth.IsService(c) && caller != target {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "cannot read another user's credits"})
	}

	user, err := ctl.accounts.EnsureUser(c.UserContext(), target, auth.Email(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	used, err := ctl.usage.Usage(c.UserContext(), target)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"user_id":           target,
		"credits_remaining": user.Credits,
		"tier":              user.Tier,
		"month_usage":       used,
		"monthly_limit":     quota.TierLimit(user.Tier),
	})
}
