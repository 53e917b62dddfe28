package circuitbreaker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
)

func TestPostJSON_DecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Goog-Api-Key"))
		w.Write([]byte(`{"answer":42}`))
	}))
	defer server.Close()

	client := NewHTTPClient(DefaultSettings("test"), zap.NewNop())

	var out struct {
		Answer int `json:"answer"`
	}
	err := client.PostJSON(context.Background(), server.URL, map[string]string{"X-Goog-Api-Key": "secret"}, map[string]string{"q": "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Answer)
}

func TestPostJSON_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(DefaultSettings("test"), zap.NewNop())
	err := client.PostJSON(context.Background(), server.URL, nil, struct{}{}, nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestPostJSON_DeadlineIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewHTTPClient(DefaultSettings("test"), zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.PostJSON(ctx, server.URL, nil, struct{}{}, nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestHTTPClient_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	settings := DefaultSettings("flaky")
	settings.FailureThreshold = 2
	client := NewHTTPClient(settings, zap.NewNop())

	for i := 0; i < 4; i++ {
		err := client.PostJSON(context.Background(), server.URL, nil, struct{}{}, nil)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	}

	assert.Equal(t, "open", client.State())
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPClient_ClientErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	settings := DefaultSettings("picky")
	settings.FailureThreshold = 1
	client := NewHTTPClient(settings, zap.NewNop())

	for i := 0; i < 3; i++ {
		err := client.PostJSON(context.Background(), server.URL, nil, struct{}{}, nil)
		var statusErr *StatusError
		assert.ErrorAs(t, err, &statusErr)
	}
	assert.Equal(t, "closed", client.State())
}
