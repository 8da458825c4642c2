package utils

import (
	"net/http/httptest"
	"testing"

	"esgframe/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func jwtTestApp(cfg *config.Config) (*fiber.App, *uint, *error) {
	app := fiber.New()
	var gotID uint
	var gotErr error
	app.Get("/protected", func(c *fiber.Ctx) error {
		gotID, gotErr = ExtractUserIDFromToken(c, cfg)
		if gotErr != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &gotID, &gotErr
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app, gotID, _ := jwtTestApp(cfg)

	token, err := GenerateJWTToken(42, cfg)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, uint(42), *gotID)
}

func TestJWTMissingToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app, _, gotErr := jwtTestApp(cfg)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Error(t, *gotErr)
}

func TestJWTWrongSecret(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	app, _, _ := jwtTestApp(cfg)

	token, err := GenerateJWTToken(42, &config.Config{JWTSecret: "othersecret"})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
