package circuitbreaker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
)

// maxErrorBody caps how much of an upstream error body ends up in logs.
const maxErrorBody = 2048

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Settings configures the HTTP client and its breaker.
type Settings struct {
	Name             string
	Timeout          time.Duration
	MaxRequests      uint32
	Interval         time.Duration
	BreakerTimeout   time.Duration
	FailureThreshold uint32
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:             name,
		Timeout:          30 * time.Second,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		BreakerTimeout:   30 * time.Second,
		FailureThreshold: 5,
	}
}

// HTTPClient wraps an HTTP client with circuit breaker protection. 5xx
// answers and transport errors count as failures; 4xx answers do not.
type HTTPClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	name    string
	log     *zap.Logger
}

func NewHTTPClient(settings Settings, log *zap.Logger) *HTTPClient {
	return NewHTTPClientWith(&http.Client{Timeout: settings.Timeout}, settings, log)
}

// NewHTTPClientWith uses the given client, which tests point at httptest servers.
func NewHTTPClientWith(client *http.Client, settings Settings, log *zap.Logger) *HTTPClient {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &HTTPClient{
		client:  client,
		breaker: breaker,
		name:    settings.Name,
		log:     log,
	}
}

func (c *HTTPClient) Name() string {
	return c.name
}

// State reports the breaker state, e.g. "closed" or "open".
func (c *HTTPClient) State() string {
	return c.breaker.State().String()
}

// Do executes the request through the breaker. Non-2xx answers are returned
// as *StatusError with the body already drained.
func (c *HTTPClient) Do(req *http.Request) ([]byte, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if len(body) > maxErrorBody {
				body = body[:maxErrorBody]
			}
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
	telemetry.UpstreamLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	if err != nil {
		telemetry.UpstreamRequestsTotal.WithLabelValues(c.name, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.Warn("Circuit breaker open, request blocked",
				zap.String("url", req.URL.Redacted()),
				zap.String("breaker", c.name),
			)
		}
		return nil, err
	}

	telemetry.UpstreamRequestsTotal.WithLabelValues(c.name, "ok").Inc()
	return result.([]byte), nil
}

// PostJSON marshals in, posts it and decodes the answer into out. Failures
// come back wrapped in domain.ErrUpstreamTimeout or domain.ErrUpstreamUnavailable.
func (c *HTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, err := c.Do(req)
	if err != nil {
		return Classify(c.name, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s returned an unreadable body: %v", domain.ErrUpstreamUnavailable, c.name, err)
	}
	return nil
}

// Classify maps a transport or breaker error onto the domain upstream errors.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamTimeout, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, provider, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusGatewayTimeout || statusErr.StatusCode == http.StatusRequestTimeout
	}
	return false
}
