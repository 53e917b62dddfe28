package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/ports"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

// Breaker is an upstream client whose circuit state is reported.
type Breaker interface {
	Name() string
	State() string
}

// Service handles health checks
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// Config holds health service configuration
type Config struct {
	Version   string
	DataStore ports.DataStoreProvider
	Sessions  ports.Cache
	Breakers  []Breaker
}

// NewService creates a new health service
func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		startTime: time.Now(),
		version:   config.Version,
		checkers:  make(map[string]Checker),
		log:       log,
	}

	if config.DataStore != nil {
		s.RegisterChecker("data_store", dataStoreChecker(config.DataStore, log))
	}
	if config.Sessions != nil {
		s.RegisterChecker("session_cache", sessionCacheChecker(config.Sessions, log))
	}
	for _, b := range config.Breakers {
		s.RegisterChecker("upstream_"+b.Name(), breakerChecker(b))
	}

	return s
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready performs a comprehensive readiness check
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for k, v := range s.checkers {
		checkers[k] = v
	}
	s.mu.RUnlock()

	// Run all checks concurrently
	results := make(map[string]CheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			result := checker(checkCtx)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	// Determine overall status
	overallStatus := StatusHealthy
	allReady := true

	for _, result := range results {
		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			allReady = false
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return &ReadyResponse{
		Ready:     allReady,
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

// dataStoreChecker loads the CSV snapshot on first use, so readiness also
// warms the store.
func dataStoreChecker(provider ports.DataStoreProvider, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		result := CheckResult{Name: "data_store", Timestamp: start}

		_, err := provider.DataStore(ctx)
		result.Duration = time.Since(start)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = fmt.Sprintf("load failed: %v", err)
			log.Warn("Data store health check failed", zap.Error(err))
			return result
		}
		result.Status = StatusHealthy
		result.Message = "loaded"
		return result
	}
}

func sessionCacheChecker(cache ports.Cache, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		result := CheckResult{Name: "session_cache", Timestamp: start}

		err := cache.Ping()
		result.Duration = time.Since(start)
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Session cache health check failed", zap.Error(err))
			return result
		}
		result.Status = StatusHealthy
		result.Message = "connection ok"
		return result
	}
}

// breakerChecker reports an open circuit as degraded: the voice and dialogue
// layers fall back to scripted replies, so the service is still usable.
func breakerChecker(b Breaker) Checker {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{
			Name:      "upstream_" + b.Name(),
			Status:    StatusHealthy,
			Message:   "circuit " + b.State(),
			Timestamp: time.Now(),
		}
		if b.State() != "closed" {
			result.Status = StatusDegraded
		}
		return result
	}
}
