package quota

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nevisai/platform/internal/auth"
	"github.com/nevisai/platform/internal/models"
)

const testJWTSecret = "test-jwt-secret-0123456789abcdef0123456789"

type fakeUsers struct {
	tier string
}

func (f *fakeUsers) EnsureUser(_ context.Context, userID, email string) (*models.User, error) {
	return &models.User{ID: userID, Email: email, Tier: f.tier}, nil
}

func quotaApp(svc *Service, users UserSource) *fiber.App {
	app := fiber.New()
	app.Use(auth.Middleware(testJWTSecret, "svc-key"))
	MountController(app, svc, users)
	return app
}

func bearerToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func TestQuotaReport(t *testing.T) {
	svc := NewService(NewMemoryCounter())
	svc.now = func() time.Time {
		return time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC)
	}
	for i := 0; i < 7; i++ {
		_, err := svc.Increment(context.Background(), "u1")
		require.NoError(t, err)
	}
	app := quotaApp(svc, &fakeUsers{tier: "growth"})

	req := httptest.NewRequest("GET", "/quota/u1", nil)
	req.Header.Set("X-Service-Key", "svc-key")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		UserID       string `json:"user_id"`
		CurrentUsage int    `json:"current_usage"`
		MonthlyLimit int    `json:"monthly_limit"`
		Remaining    int    `json:"remaining"`
		Month        string `json:"month"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u1", body.UserID)
	assert.Equal(t, 7, body.CurrentUsage)
	assert.Equal(t, 250, body.MonthlyLimit)
	assert.Equal(t, 243, body.Remaining)
	assert.Equal(t, "2025-09", body.Month)
}

func TestQuotaRemainingFloorsAtZero(t *testing.T) {
	svc := NewService(NewMemoryCounter())
	for i := 0; i < 45; i++ {
		_, err := svc.Increment(context.Background(), "u1")
		require.NoError(t, err)
	}
	app := quotaApp(svc, &fakeUsers{tier: "free"})

	req := httptest.NewRequest("GET", "/quota/u1", nil)
	req.Header.Set("X-Service-Key", "svc-key")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 45, body["current_usage"])
	assert.EqualValues(t, 0, body["remaining"])
}

func TestQuotaTokenCallerScopedToSelf(t *testing.T) {
	svc := NewService(NewMemoryCounter())
	app := quotaApp(svc, &fakeUsers{tier: "free"})

	req := httptest.NewRequest("GET", "/quota/u1", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "u1"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/quota/someone-else", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "u1"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestQuotaRequiresAuth(t *testing.T) {
	app := quotaApp(NewService(NewMemoryCounter()), &fakeUsers{tier: "free"})

	req := httptest.NewRequest("GET", "/quota/u1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
