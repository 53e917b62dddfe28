// Package app wires the adapters and services into the HTTP application.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/adapter/ai/gemini"
	"github.com/seu-repo/voice-banking/internal/adapter/cache"
	"github.com/seu-repo/voice-banking/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/voice-banking/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/voice-banking/internal/adapter/speech/google"
	"github.com/seu-repo/voice-banking/internal/adapter/storage/csvstore"
	wsAdapter "github.com/seu-repo/voice-banking/internal/adapter/websocket"
	"github.com/seu-repo/voice-banking/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voice-banking/internal/ports"
	"github.com/seu-repo/voice-banking/internal/service/banking"
	"github.com/seu-repo/voice-banking/internal/service/chat"
	"github.com/seu-repo/voice-banking/internal/service/dialogue"
	"github.com/seu-repo/voice-banking/internal/service/health"
	"github.com/seu-repo/voice-banking/internal/service/voice"
	"github.com/seu-repo/voice-banking/pkg/config"
)

// App is the assembled service: the fiber router plus the resources that
// must be released on shutdown.
type App struct {
	Router  *fiber.App
	Hub     *wsAdapter.Hub
	DataDir string

	sessions ports.Cache
	stopHub  context.CancelFunc
	log      *zap.Logger
}

// New locates and loads the CSV snapshot, connects the session cache and the
// upstream clients, and mounts every route. A missing or unreadable data
// directory is fatal.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	dataDir, err := config.ResolveDataDir(cfg.Data)
	if err != nil {
		return nil, err
	}
	dataStore := csvstore.NewHandle(dataDir, log)
	if _, err := dataStore.Store(); err != nil {
		return nil, fmt.Errorf("failed to load data store from %s: %w", dataDir, err)
	}

	// Session cache (Redis, in-memory fallback)
	sessions := cache.New(cfg.Redis.URL, cfg.Redis.Prefix, log)

	// Upstream clients behind circuit breakers
	geminiHTTP := circuitbreaker.NewHTTPClient(breakerSettings("gemini", cfg.CircuitBreaker, cfg.Gemini.Timeout), log)
	speechHTTP := circuitbreaker.NewHTTPClient(breakerSettings("google-speech", cfg.CircuitBreaker, cfg.Speech.Timeout), log)

	llm := gemini.NewClient(gemini.Config{
		BaseURL:     cfg.Gemini.BaseURL,
		Model:       cfg.Gemini.Model,
		APIKey:      cfg.Gemini.APIKey,
		AccessToken: cfg.Gemini.AccessToken,
		Project:     cfg.Gemini.Project,
		Location:    cfg.Gemini.Location,
		Datastore:   cfg.Gemini.Datastore,
		Timeout:     cfg.Gemini.Timeout,
	}, geminiHTTP, log)

	speechCfg := google.Config{
		APIKey:      cfg.Speech.APIKey,
		AccessToken: cfg.Speech.AccessToken,
		STTEndpoint: cfg.Speech.STTEndpoint,
		TTSEndpoint: cfg.Speech.TTSEndpoint,
		Timeout:     cfg.Speech.Timeout,
	}
	stt := google.NewSpeechToText(speechCfg, speechHTTP, log)
	tts := google.NewTextToSpeech(speechCfg, speechHTTP, log)

	// Services (Business Logic Layer)
	bankingService := banking.NewService(dataStore, log)
	voiceService := voice.NewService(stt, tts, log)
	dialogueService := dialogue.NewService(llm, bankingService, sessions, cfg.Dialogue.SessionTTL, log)
	chatService := chat.NewService(dialogueService, voiceService, log)

	healthService := health.NewService(&health.Config{
		Version:   cfg.App.Version,
		DataStore: dataStore,
		Sessions:  sessions,
		Breakers:  []health.Breaker{geminiHTTP, speechHTTP},
	}, log)

	// WebSocket Hub (chat connections)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := wsAdapter.NewHub()
	go hub.Run(hubCtx)

	router := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(log),
	})

	// Global Middleware
	router.Use(recover.New())
	router.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		router.Use(middleware.NewCORS(cfg.CORS))
	}

	health.NewFiberHandler(healthService).RegisterRoutes(router)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		router.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	// Routes that depend on upstream providers shed load when they keep failing
	router.Use("/voice", middleware.CircuitBreaker("voice-api", log))
	router.Use("/chat", middleware.CircuitBreaker("chat-api", log))

	handlers.NewBankingHandler(bankingService, log).RegisterRoutes(router)
	handlers.NewVoiceHandler(voiceService, log).RegisterRoutes(router)
	handlers.NewChatHandler(chatService, log).RegisterRoutes(router)

	wsAdapter.SetupChatRoutes(router, wsAdapter.NewChatHandler(chatService, hub, log))

	return &App{
		Router:   router,
		Hub:      hub,
		DataDir:  dataDir,
		sessions: sessions,
		stopHub:  stopHub,
		log:      log,
	}, nil
}

// Shutdown tells connected chat clients the server is going away, then stops
// the router and releases the session cache.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("Shutting down server...", zap.Int("chat_connections", a.Hub.Count()))

	notice, _ := json.Marshal(fiber.Map{"error": "server shutting down", "status": fiber.StatusServiceUnavailable})
	a.Hub.Broadcast(notice)
	a.stopHub()

	err := a.Router.ShutdownWithContext(ctx)
	if cerr := a.sessions.Close(); cerr != nil {
		a.log.Warn("Failed to close session cache", zap.Error(cerr))
	}
	return err
}

func breakerSettings(name string, cfg config.CircuitBreakerConfig, timeout time.Duration) circuitbreaker.Settings {
	settings := circuitbreaker.DefaultSettings(name)
	if timeout > 0 {
		settings.Timeout = timeout
	}
	if cfg.MaxRequests > 0 {
		settings.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		settings.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		settings.BreakerTimeout = cfg.Timeout
	}
	if cfg.FailureThreshold > 0 {
		settings.FailureThreshold = cfg.FailureThreshold
	}
	return settings
}
