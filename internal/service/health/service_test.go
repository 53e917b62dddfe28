package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/mocks"
)

type stubBreaker struct {
	name  string
	state string
}

func (b stubBreaker) Name() string  { return b.name }
func (b stubBreaker) State() string { return b.state }

func TestReady_AllHealthy(t *testing.T) {
	svc := NewService(&Config{
		Version:   "test",
		DataStore: mocks.StaticDataStoreProvider{},
		Sessions:  mocks.NewMockCache(),
		Breakers:  []Breaker{stubBreaker{name: "gemini", state: "closed"}},
	}, zap.NewNop())

	resp := svc.Ready(context.Background())

	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Len(t, resp.Checks, 3)
	assert.Equal(t, "circuit closed", resp.Checks["upstream_gemini"].Message)
}

func TestReady_DataStoreFailureIsUnhealthy(t *testing.T) {
	svc := NewService(&Config{
		DataStore: mocks.StaticDataStoreProvider{Err: domain.ErrConfiguration},
		Sessions:  mocks.NewMockCache(),
	}, zap.NewNop())

	resp := svc.Ready(context.Background())

	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, StatusUnhealthy, resp.Checks["data_store"].Status)
	assert.Contains(t, resp.Checks["data_store"].Message, "load failed")
}

func TestReady_SessionCacheDown(t *testing.T) {
	cache := mocks.NewMockCache()
	cache.PingFunc = func() error { return errors.New("connection refused") }

	svc := NewService(&Config{Sessions: cache}, zap.NewNop())
	resp := svc.Ready(context.Background())

	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Checks["session_cache"].Status)
}

func TestReady_OpenBreakerIsDegraded(t *testing.T) {
	svc := NewService(&Config{
		DataStore: mocks.StaticDataStoreProvider{},
		Breakers:  []Breaker{stubBreaker{name: "speech", state: "open"}},
	}, zap.NewNop())

	resp := svc.Ready(context.Background())

	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)
}

func TestFiberHandler(t *testing.T) {
	svc := NewService(&Config{
		Version:   "1.2.3",
		DataStore: mocks.StaticDataStoreProvider{Err: domain.ErrConfiguration},
	}, zap.NewNop())

	app := fiber.New()
	NewFiberHandler(svc).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "1.2.3", health.Version)

	resp, err = app.Test(httptest.NewRequest("GET", "/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/readyz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
