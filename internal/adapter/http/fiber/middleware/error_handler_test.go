package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/pkg/config"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("lookup: %w", domain.ErrCustomerNotFound), fiber.StatusNotFound},
		{domain.ErrNotFound, fiber.StatusNotFound},
		{domain.ErrCustomerAmbiguous, fiber.StatusConflict},
		{fmt.Errorf("%w: n must be 1-100", domain.ErrValidation), fiber.StatusBadRequest},
		{fmt.Errorf("%w: gemini: %w", domain.ErrUpstreamTimeout, errors.New("deadline")), fiber.StatusGatewayTimeout},
		{domain.ErrUpstreamUnavailable, fiber.StatusServiceUnavailable},
		{fiber.ErrUpgradeRequired, fiber.StatusUpgradeRequired},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret dsn leaked") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, "internal server error", body["error"])
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(CircuitBreaker("test", zap.NewNop()))
	app.Get("/fail", func(c *fiber.Ctx) error { return domain.ErrUpstreamUnavailable })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, jsonDecode(resp, &body))
	assert.Equal(t, "Service temporarily unavailable", body["error"])
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(CircuitBreaker("test", zap.NewNop()))
	app.Get("/bad", func(c *fiber.Ctx) error { return domain.ErrValidation })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/bad", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
}

func jsonDecode(resp *http.Response, v interface{}) error {
	return json.NewDecoder(resp.Body).Decode(v)
}

func TestNewCORS(t *testing.T) {
	app := fiber.New()
	app.Use(NewCORS(config.CORSConfig{AllowedOrigins: []string{"https://bank.example"}}))
	app.Post("/chat/start", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/chat/start", nil)
	req.Header.Set("Origin", "https://bank.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}
