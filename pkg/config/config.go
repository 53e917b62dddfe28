package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Data           DataConfig           `mapstructure:"data"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Gemini         GeminiConfig         `mapstructure:"gemini"`
	Speech         SpeechConfig         `mapstructure:"speech"`
	Dialogue       DialogueConfig       `mapstructure:"dialogue"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

// DataConfig locates the CSV snapshot. Dir wins when set; otherwise the
// conventional locations below Base are searched.
type DataConfig struct {
	Dir  string `mapstructure:"dir"`
	Base string `mapstructure:"base"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	AccessToken string        `mapstructure:"access_token"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Project     string        `mapstructure:"project"`
	Location    string        `mapstructure:"location"`
	Datastore   string        `mapstructure:"datastore"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SpeechConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	AccessToken string        `mapstructure:"access_token"`
	STTEndpoint string        `mapstructure:"stt_endpoint"`
	TTSEndpoint string        `mapstructure:"tts_endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type DialogueConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}
