package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// Load reads configs/config.yaml (if any), a .env file (if any) and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/configs")

	return load(v)
}

// LoadFile reads a specific config file instead of searching for one.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	v.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	v.BindEnv("data.dir", "DATA_DIR", "APP_DATA_DIR")
	v.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "APP_GEMINI_API_KEY")
	v.BindEnv("gemini.access_token", "GOOGLE_ACCESS_TOKEN", "APP_GEMINI_ACCESS_TOKEN")
	v.BindEnv("gemini.project", "GOOGLE_CLOUD_PROJECT", "APP_GEMINI_PROJECT")
	v.BindEnv("gemini.datastore", "DATASTORE_ID", "APP_GEMINI_DATASTORE")
	v.BindEnv("speech.api_key", "GOOGLE_API_KEY", "APP_SPEECH_API_KEY")
	v.BindEnv("speech.access_token", "GOOGLE_ACCESS_TOKEN", "APP_SPEECH_ACCESS_TOKEN")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "voice-banking")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "90s")
	v.SetDefault("http.idle_timeout", "120s")
	v.SetDefault("http.body_limit", 10*1024*1024)

	v.SetDefault("redis.prefix", "voice-banking:session:")

	v.SetDefault("gemini.model", "gemini-2.0-flash-001")
	v.SetDefault("gemini.location", "us-central1")
	v.SetDefault("gemini.timeout", "60s")
	v.SetDefault("speech.timeout", "30s")

	v.SetDefault("dialogue.session_ttl", "30m")

	v.SetDefault("opentelemetry.service_name", "voice-banking")
	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("circuit_breaker.max_requests", 3)
	v.SetDefault("circuit_breaker.interval", "60s")
	v.SetDefault("circuit_breaker.timeout", "30s")
	v.SetDefault("circuit_breaker.failure_threshold", 5)

	v.SetDefault("cors.enabled", true)
}

// ResolveDataDir returns the directory holding the CSV snapshot. Dir, when
// set, is tried first; then data/synthetic_data, synthetic_data and
// ../synthetic_data below Base (the working directory when empty). The first
// existing directory wins.
func ResolveDataDir(cfg DataConfig) (string, error) {
	base := cfg.Base
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("%w: cannot determine working directory: %v", domain.ErrConfiguration, err)
		}
		base = wd
	}

	var candidates []string
	if cfg.Dir != "" {
		candidates = append(candidates, cfg.Dir)
	}
	candidates = append(candidates,
		filepath.Join(base, "data", "synthetic_data"),
		filepath.Join(base, "synthetic_data"),
		filepath.Join(base, "..", "synthetic_data"),
	)
	for _, dir := range candidates {
		if isDir(dir) {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: no data directory found, searched %s",
		domain.ErrConfiguration, strings.Join(candidates, ", "))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
