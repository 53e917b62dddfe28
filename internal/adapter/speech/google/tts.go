package google

import (
	"context"
	"encoding/base64"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
)

// TextToSpeech implements ports.SpeechSynthesizer with text:synthesize.
// Output is always MP3.
type TextToSpeech struct {
	cfg  Config
	http *circuitbreaker.HTTPClient
	log  *zap.Logger
}

func NewTextToSpeech(cfg Config, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *TextToSpeech {
	return &TextToSpeech{cfg: cfg.withDefaults(), http: httpClient, log: log}
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func (s *TextToSpeech) Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "speech.synthesize")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var req synthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = languageCode
	req.Voice.Name = voiceName
	req.AudioConfig.AudioEncoding = "MP3"

	var resp synthesizeResponse
	if err := s.http.PostJSON(ctx, s.cfg.TTSEndpoint+"/text:synthesize", s.cfg.headers(), req, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("%w: text-to-speech returned invalid audio: %v", domain.ErrUpstreamUnavailable, err)
	}

	s.log.Debug("Speech synthesized",
		zap.String("language", languageCode),
		zap.String("voice", voiceName),
		zap.Int("bytes", len(audio)),
	)
	return audio, nil
}
