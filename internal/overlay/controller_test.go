package overlay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevisai/platform/internal/auth"
)

func testApp(svc *Service) *fiber.App {
	app := fiber.New()
	app.Use(auth.Middleware("test-jwt-secret-0123456789abcdef0123456789", "svc-key"))
	MountController(app, svc)
	return app
}

func postOverlay(t *testing.T, app *fiber.App, payload map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/overlay-text", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Key", "svc-key")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestOverlayEndpoint(t *testing.T) {
	src := flatJPEG(t, 200, 160, navy)
	svc := NewService(func(ctx context.Context, url string) ([]byte, error) { return src, nil })
	app := testApp(svc)

	resp := postOverlay(t, app, map[string]any{
		"image_url": "https://img.example.com/bg.jpg",
		"text":      "Grand Opening",
		"options":   map[string]any{"position": "bottom", "bg_opacity": 0.5},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Text overlay completed successfully", body["message"])

	imageURL, ok := body["image_url"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(imageURL, "data:image/jpeg;base64,"))
}

func TestOverlayEndpointValidation(t *testing.T) {
	svc := NewService(nil)
	app := testApp(svc)

	resp := postOverlay(t, app, map[string]any{"image_url": "https://img.example.com/bg.jpg"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "text is required")

	resp = postOverlay(t, app, map[string]any{
		"image_url": "https://img.example.com/bg.jpg",
		"text":      "Hi",
		"options":   map[string]any{"position": "diagonal"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "unknown position preset")

	resp = postOverlay(t, app, map[string]any{
		"image_url": "https://img.example.com/bg.jpg",
		"text":      "Hi",
		"options":   map[string]any{"font_color": "red"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "colors are hex")
}

func TestOverlayEndpointFetchFailure(t *testing.T) {
	svc := NewService(func(ctx context.Context, url string) ([]byte, error) {
		return nil, errors.New("connection refused")
	})
	app := testApp(svc)

	resp := postOverlay(t, app, map[string]any{
		"image_url": "https://img.example.com/bg.jpg",
		"text":      "Grand Opening",
	})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "failed to download image")
}

func TestOverlayEndpointRejectsAnonymous(t *testing.T) {
	app := testApp(NewService(nil))

	req := httptest.NewRequest("POST", "/overlay-text", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
