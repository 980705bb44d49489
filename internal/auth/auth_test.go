package auth

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func testApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(testSecret, "service-key-123"))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := UserID(c, c.Query("body_user"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"user_id": id, "email": Email(c), "service": IsService(c)})
	})
	return app
}

func TestMiddlewareValidToken(t *testing.T) {
	app := testApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-abc",
		"email": "owner@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-abc", body["user_id"])
	assert.Equal(t, "owner@example.com", body["email"])
	assert.Equal(t, false, body["service"])
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	app := testApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	app := testApp()
	token := signedToken(t, "some-other-secret-that-is-not-ours-at-all", jwt.MapClaims{
		"sub": "user-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	app := testApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub": "user-abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsTokenWithoutSubject(t *testing.T) {
	app := testApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServiceKeyActsForBodyUser(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest("GET", "/whoami?body_user=user-from-body", nil)
	req.Header.Set("X-Service-Key", "service-key-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-from-body", body["user_id"])
	assert.Equal(t, true, body["service"])
}

func TestServiceKeyWithoutUserFails(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Service-Key", "service-key-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWrongServiceKeyFallsThroughToToken(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-Service-Key", "not-the-key")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTokenUserCannotActAsAnother(t *testing.T) {
	app := testApp()
	token := signedToken(t, testSecret, jwt.MapClaims{
		"sub": "user-abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	// body_user must be ignored for token-authenticated calls
	req := httptest.NewRequest("GET", "/whoami?body_user=victim", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-abc", body["user_id"])
}
