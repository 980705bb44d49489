package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/billing"
	"github.com/nevisai/platform/internal/brand"
	"github.com/nevisai/platform/internal/cleanup"
	"github.com/nevisai/platform/internal/config"
	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/db"
	"github.com/nevisai/platform/internal/generation"
	"github.com/nevisai/platform/internal/health"
	"github.com/nevisai/platform/internal/metrics"
	"github.com/nevisai/platform/internal/overlay"
	"github.com/nevisai/platform/internal/posts"
	"github.com/nevisai/platform/internal/profiler"
	"github.com/nevisai/platform/internal/provider"
	"github.com/nevisai/platform/internal/quota"
	"github.com/nevisai/platform/internal/scraper"
	"github.com/nevisai/platform/internal/screenshot"
	"github.com/nevisai/platform/internal/storage"
	"github.com/nevisai/platform/pkg/web"
)

func main() {
	cfg := config.Load()

	db.Connect()

	var counter quota.Counter = quota.NewMemoryCounter()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis at %s unreachable, quota counts stay in memory: %v", cfg.RedisAddr, err)
		} else {
			counter = quota.NewRedisCounter(rdb)
			log.Println("Quota counts live in Redis")
		}
	}
	quotaSvc := quota.NewService(counter)
	creditsSvc := credits.NewService(db.GetDB())

	chain := &provider.Chain{
		Gemini:        provider.NewGemini(),
		OpenRouter:    provider.NewOpenRouter(cfg.SiteURL, cfg.SiteName),
		OpenRouterKey: cfg.OpenRouterKey,
	}

	uploads := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket)
	postsRepo := posts.NewRepo(db.GetDB())
	genSvc := generation.NewService(cfg, chain, quotaSvc, creditsSvc, postsRepo, uploads)

	webScraper := scraper.New()
	profilerSvc := profiler.NewService(chain.OpenRouter, cfg.OpenRouterKey, webScraper, quotaSvc, creditsSvc)
	overlaySvc := overlay.NewService(web.FetchMedia)
	billingSvc := billing.NewService(db.GetDB(), cfg.StripeSecretKey, cfg.StripeWebhookSecret,
		cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	shots := screenshot.NewService(cfg.ScreenshotCacheDir)
	if cfg.ScreenshotEnabled {
		if err := shots.Setup(); err != nil {
			log.Printf("Screenshot capture unavailable: %v", err)
		}
	}

	var cleanupSvc *cleanup.Service
	if cfg.CleanupRetentionDays > 0 {
		cleanupSvc = cleanup.NewService(postsRepo, uploads, cfg.CleanupRetentionDays)
		cleanup.SetupCron(cfg.CronLocation, cleanupSvc)
	}

	app := fiber.New()
	app.Use(metrics.Middleware())

	health.MountController(app, chain)
	app.Get("/metrics", metrics.Handler())

	v1 := app.Group("/v1")
	// Stripe signs its own calls, so the webhook mounts ahead of auth.
	billing.MountWebhook(v1, billingSvc)

	app.Use(auth.Middleware(cfg.SupabaseJWTSecret, cfg.ServiceAPIKey))

	generation.MountController(v1, genSvc)
	profiler.MountController(v1, profilerSvc)
	scraper.MountController(v1, webScraper)
	overlay.MountController(v1, overlaySvc)
	screenshot.MountController(v1, shots)
	brand.MountController(v1, brand.NewRepo(db.GetDB()))
	posts.MountController(v1, postsRepo, uploads)
	quota.MountController(v1, quotaSvc, creditsSvc)
	credits.MountController(v1, creditsSvc, quotaSvc)
	billing.MountController(v1, billingSvc)
	if cleanupSvc != nil {
		cleanup.MountController(v1.Group("/cron"), cleanupSvc)
	}

	log.Fatal(app.Listen(":" + cfg.Port))
}
