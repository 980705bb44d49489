package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
// Optional integrations (Redis, OpenRouter, Stripe, screenshots) stay nil/empty
// when unconfigured and the dependent features switch themselves off.
type Config struct {
	Port        string
	SupabaseDSN string
	MongoURI    string

	RedisAddr     string
	RedisPassword string

	GeminiKey      string
	GeminiKeyRevo  map[string]string
	OpenRouterKey  string
	SiteURL        string
	SiteName       string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseJWTSecret  string
	StorageBucket      string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	ServiceAPIKey string

	ScreenshotEnabled  bool
	ScreenshotCacheDir string

	CleanupRetentionDays int
	CronLocation         string
}

// Load reads .env (if present) and the process environment into a Config.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		SupabaseDSN: os.Getenv("SUPABASE_DSN"),
		MongoURI:    os.Getenv("MONGO_URI"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		GeminiKey: os.Getenv("GEMINI_API_KEY"),
		GeminiKeyRevo: map[string]string{
			"1.0": os.Getenv("GEMINI_API_KEY_REVO_1_0"),
			"1.5": os.Getenv("GEMINI_API_KEY_REVO_1_5"),
			"2.0": os.Getenv("GEMINI_API_KEY_REVO_2_0"),
		},
		OpenRouterKey: os.Getenv("OPENROUTER_API_KEY"),
		SiteURL:       getenv("SITE_URL", "https://nevis.ai"),
		SiteName:      getenv("SITE_NAME", "Nevis AI Platform"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		SupabaseJWTSecret:  os.Getenv("SUPABASE_JWT_SECRET"),
		StorageBucket:      getenv("SUPABASE_STORAGE_BUCKET", "generated-content"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  getenv("CHECKOUT_SUCCESS_URL", "https://nevis.ai/billing/success"),
		CheckoutCancelURL:   getenv("CHECKOUT_CANCEL_URL", "https://nevis.ai/billing/cancel"),

		ServiceAPIKey: os.Getenv("SERVICE_API_KEY"),

		ScreenshotEnabled:  getenv("SCREENSHOT_ENABLED", "false") == "true",
		ScreenshotCacheDir: getenv("SCREENSHOT_CACHE_DIR", "./screenshot_cache"),

		CleanupRetentionDays: getenvInt("CLEANUP_RETENTION_DAYS", 90),
		CronLocation:         getenv("CRON_LOCATION", "UTC"),
	}

	return cfg
}

// GeminiKeyForRevision returns the revision-specific Gemini key, falling back
// to the shared GEMINI_API_KEY when the revision has none of its own.
func (c *Config) GeminiKeyForRevision(revision string) string {
	if key := c.GeminiKeyRevo[revision]; key != "" {
		return key
	}
	return c.GeminiKey
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
