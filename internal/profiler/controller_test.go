package profiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/quota"
)

func testApp(f *fixture) *fiber.App {
	app := fiber.New()
	app.Use(auth.Middleware("test-jwt-secret-0123456789abcdef0123456789", "svc-key"))
	MountController(app, f.svc)
	return app
}

func postAnalyze(t *testing.T, app *fiber.App, payload map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/analyze-website", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", "svc-key")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAnalyzeEndpoint(t *testing.T) {
	f := newFixture(chatReply{content: profileJSON})
	app := testApp(f)

	resp := postAnalyze(t, app, map[string]any{
		"website_content": softwareContent,
		"user_id":         "user-1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "anthropic/claude-3-haiku", body["model_used"])
	assert.Equal(t, "openrouter", body["provider_used"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Paradise Spa", data["businessName"])
	assert.Equal(t, "Beauty & Wellness", data["businessType"])
}

func TestAnalyzeEndpointRequiresURLOrContent(t *testing.T) {
	f := newFixture()
	app := testApp(f)

	resp := postAnalyze(t, app, map[string]any{"user_id": "user-1"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body["error"], "website_url or website_content is required")
}

func TestAnalyzeEndpointScrapeFailure(t *testing.T) {
	f := newFixture()
	f.pages.err = errors.New("connection refused")
	app := testApp(f)

	resp := postAnalyze(t, app, map[string]any{
		"website_url": "https://down.example.com",
		"user_id":     "user-1",
	})
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestAnalyzeEndpointQuotaExceeded(t *testing.T) {
	f := newFixture()
	f.counter.usage = quota.FreeTierLimit
	f.ledger.user.Credits = 0
	f.ledger.spendErr = credits.ErrInsufficientCredits
	app := testApp(f)

	resp := postAnalyze(t, app, map[string]any{
		"website_content": softwareContent,
		"user_id":         "user-1",
	})
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Monthly quota exceeded (40/40)", body["error"])
}

func TestAnalyzeEndpointInsufficientCredits(t *testing.T) {
	f := newFixture()
	f.counter.usage = quota.FreeTierLimit
	f.ledger.spendErr = credits.ErrInsufficientCredits
	f.ledger.spendBal = 1
	app := testApp(f)

	resp := postAnalyze(t, app, map[string]any{
		"website_content": softwareContent,
		"user_id":         "user-1",
	})
	require.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
}

func TestAnalyzeEndpointRejectsAnonymous(t *testing.T) {
	f := newFixture()
	app := testApp(f)

	req := httptest.NewRequest("POST", "/analyze-website", bytes.NewReader([]byte(`{"website_content":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
