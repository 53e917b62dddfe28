package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seu-repo/voice-banking/internal/app"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
	"github.com/seu-repo/voice-banking/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting voice banking backend",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Initialize OpenTelemetry (optional)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.App.Version, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Wire data store, session cache, upstream clients and routes
	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	// 5. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server",
			zap.Int("port", cfg.HTTP.Port),
			zap.String("data_dir", application.DataDir),
		)
		if err := application.Router.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
