package profiler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/quota"
)

type Controller struct {
	svc *Service
}

func MountController(router fiber.Router, svc *Service) {
	ctl := &Controller{svc: svc}
	router.Post("/analyze-website", ctl.Analyze)
}

func (ctl *Controller) Analyze(c *fiber.Ctx) error {
	var body AnalyzeBody
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

	req := Request{
		UserID:     userID,
		Email:      auth.Email(c),
		WebsiteURL: body.WebsiteURL,
		Content:    body.WebsiteContent,
	}
	if body.Temperature != nil {
		req.Temperature = *body.Temperature
	}
	if body.MaxTokens != nil {
		req.MaxTokens = *body.MaxTokens
	}

	resp, err := ctl.svc.Analyze(c.UserContext(), req)
	if err != nil {
		return writeAnalyzeError(c, err)
	}
	return c.JSON(resp)
}

func writeAnalyzeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNoContent) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	}
	var lowBalance *credits.InsufficientCreditsError
	if errors.As(err, &lowBalance) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
