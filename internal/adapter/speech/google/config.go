package google

import (
	"time"
)

const (
	defaultSTTEndpoint = "https://speech.googleapis.com/v1"
	defaultTTSEndpoint = "https://texttospeech.googleapis.com/v1"
)

// Config authenticates with either an API key or an OAuth access token.
type Config struct {
	APIKey      string
	AccessToken string
	STTEndpoint string
	TTSEndpoint string
	Timeout     time.Duration
}

func (c Config) headers() map[string]string {
	headers := make(map[string]string, 1)
	if c.AccessToken != "" {
		headers["Authorization"] = "Bearer " + c.AccessToken
	} else if c.APIKey != "" {
		headers["x-goog-api-key"] = c.APIKey
	}
	return headers
}

func (c Config) withDefaults() Config {
	if c.STTEndpoint == "" {
		c.STTEndpoint = defaultSTTEndpoint
	}
	if c.TTSEndpoint == "" {
		c.TTSEndpoint = defaultTTSEndpoint
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
