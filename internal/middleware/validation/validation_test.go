package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(Middleware(Config{}))
	app.Post("/api/v1/compliance/check", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/api/v1/risks", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestValidModelID(t *testing.T) {
	assert.True(t, ValidModelID("meta-llama/Llama-3-8B"))
	assert.True(t, ValidModelID("bare-model"))
	assert.True(t, ValidModelID("org/model.v2_final"))

	assert.False(t, ValidModelID(""))
	assert.False(t, ValidModelID("/leading-slash"))
	assert.False(t, ValidModelID("too/many/slashes"))
	assert.False(t, ValidModelID("spaces are bad"))
	assert.False(t, ValidModelID(strings.Repeat("a", 300)))
}

func TestMiddleware_RejectsUnsupportedContentType(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/v1/risks", strings.NewReader("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestMiddleware_RejectsMissingModelID(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/v1/compliance/check", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddleware_RejectsMalformedModelID(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/v1/compliance/check",
		strings.NewReader(`{"model_id": "../../etc/passwd"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddleware_AcceptsWellFormedRequest(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/v1/compliance/check",
		strings.NewReader(`{"model_id": "org/alpha"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddleware_RejectsMarkupInRiskTitle(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("POST", "/api/v1/risks",
		strings.NewReader(`{"title": "<script>alert(1)</script>"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestMiddleware_IgnoresGETRequests(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(Config{}))
	app.Get("/api/v1/risks", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/risks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
