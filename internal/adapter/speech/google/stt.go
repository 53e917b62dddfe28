package google

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
)

// SpeechToText implements ports.SpeechRecognizer with speech:recognize.
type SpeechToText struct {
	cfg  Config
	http *circuitbreaker.HTTPClient
	log  *zap.Logger
}

func NewSpeechToText(cfg Config, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *SpeechToText {
	return &SpeechToText{cfg: cfg.withDefaults(), http: httpClient, log: log}
}

type recognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz,omitempty"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  struct {
		Content string `json:"content"`
	} `json:"audio"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize transcribes audio under a single format assumption. The best
// alternative of every result is joined with spaces; no results yields "".
func (s *SpeechToText) Recognize(ctx context.Context, audio []byte, format domain.AudioFormat, language string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "speech.recognize")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var req recognizeRequest
	req.Config = recognitionConfig{
		Encoding:                   format.Encoding,
		SampleRateHertz:            format.SampleRate,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	req.Audio.Content = base64.StdEncoding.EncodeToString(audio)

	var resp recognizeResponse
	if err := s.http.PostJSON(ctx, s.cfg.STTEndpoint+"/speech:recognize", s.cfg.headers(), req, &resp); err != nil {
		span.RecordError(err)
		return "", err
	}

	parts := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(result.Alternatives[0].Transcript); text != "" {
			parts = append(parts, text)
		}
	}

	s.log.Debug("Speech recognized",
		zap.String("encoding", format.Encoding),
		zap.Int("results", len(resp.Results)),
	)
	return strings.Join(parts, " "), nil
}
