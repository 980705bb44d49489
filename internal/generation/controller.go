package generation

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/provider"
	"github.com/nevisai/platform/internal/quota"
)

type Controller struct {
	svc *Service
}

func MountController(router fiber.Router, svc *Service) {
	ctl := &Controller{svc: svc}
	router.Post("/generate-text", ctl.GenerateText)
	router.Post("/generate-image", ctl.GenerateImage)
}

func (ctl *Controller) GenerateText(c *fiber.Ctx) error {
	return ctl.generate(c, KindText, DefaultTextModel)
}

func (ctl *Controller) GenerateImage(c *fiber.Ctx) error {
	return ctl.generate(c, KindImage, DefaultImageModel)
}

func (ctl *Controller) generate(c *fiber.Ctx, kind, defaultModel string) error {
	var body GenerateBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := body.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	userID, err := auth.UserID(c, body.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	req := Request{
		UserID:      userID,
		Email:       auth.Email(c),
		Prompt:      body.Prompt,
		Model:       body.Model,
		Revision:    body.RevoVersion,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
		Kind:        kind,
		BrandID:     body.BrandID,
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
	if req.Revision == "" {
		req.Revision = DefaultRevision
	}
	if body.MaxTokens != nil {
		req.MaxTokens = *body.MaxTokens
	}
	if body.Temperature != nil {
		req.Temperature = *body.Temperature
	}

	resp, err := ctl.svc.Generate(c.UserContext(), req)
	if err != nil {
		return writeGenerateError(c, err)
	}
	return c.JSON(resp)
}

func writeGenerateError(c *fiber.Ctx, err error) error {
	var notAllowed *provider.ModelNotAllowedError
	if errors.As(err, &notAllowed) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":          err.Error(),
			"allowed_models": provider.AllowedModels(),
		})
	}
	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	var lowBalance *credits.InsufficientCreditsError
	if errors.As(err, &lowBalance) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	var failed *FailedError
	if errors.As(err, &failed) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
