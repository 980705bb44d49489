// Package health exposes the unauthenticated probe that reports service
// status and which generation routes are live.
package health

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nevisai/platform/internal/profiler"
	"github.com/nevisai/platform/internal/provider"
)

type Controller struct {
	chain *provider.Chain
}

func MountController(router fiber.Router, chain *provider.Chain) {
	ctl := &Controller{chain: chain}
	router.Get("/health", ctl.Get)
}

func (ctl *Controller) Get(c *fiber.Ctx) error {
	openRouter := ctl.chain != nil && ctl.chain.FallbackConfigured()
	return c.JSON(fiber.Map{
		"status":                   "healthy",
		"allowed_models":           provider.AllowedModels(),
		"openrouter_configured":    openRouter,
		"fallback_models":          provider.FallbackModels(),
		"website_analysis_enabled": openRouter,
		"website_analysis_models":  profiler.AnalysisModels(),
	})
}
