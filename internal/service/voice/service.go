package voice

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
	"github.com/seu-repo/voice-banking/internal/ports"
)

const DefaultLanguage = "en-US"

// DecodeAttempts is the order in which audio encodings are guessed: the
// browser's native recording format, then provider auto-detection, then raw
// 16 kHz PCM.
var DecodeAttempts = []domain.AudioFormat{
	{Encoding: "WEBM_OPUS", SampleRate: 48000},
	{Encoding: "ENCODING_UNSPECIFIED"},
	{Encoding: "LINEAR16", SampleRate: 16000},
}

// Voice is the provider voice used for one supported language code.
type Voice struct {
	LanguageCode string
	Name         string
}

var Voices = map[string]Voice{
	"en-US": {LanguageCode: "en-US", Name: "en-US-Standard-C"},
	"en-GB": {LanguageCode: "en-GB", Name: "en-GB-Standard-A"},
	"nl-NL": {LanguageCode: "nl-NL", Name: "nl-NL-Standard-A"},
	"nl-BE": {LanguageCode: "nl-BE", Name: "nl-BE-Standard-A"},
	"fr-BE": {LanguageCode: "fr-FR", Name: "fr-FR-Standard-A"},
	"de-DE": {LanguageCode: "de-DE", Name: "de-DE-Standard-A"},
}

// SupportedLanguages lists the accepted synthesis language codes, sorted.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(Voices))
	for code := range Voices {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type Service struct {
	stt      ports.SpeechRecognizer
	tts      ports.SpeechSynthesizer
	attempts []domain.AudioFormat
	log      *zap.Logger
}

func NewService(stt ports.SpeechRecognizer, tts ports.SpeechSynthesizer, log *zap.Logger) *Service {
	return &Service{
		stt:      stt,
		tts:      tts,
		attempts: DecodeAttempts,
		log:      log,
	}
}

// Transcribe tries each decode assumption in order and returns the first
// transcript the provider accepts. When every attempt fails the result is "".
func (s *Service) Transcribe(ctx context.Context, audio []byte, language string) string {
	if len(audio) == 0 {
		return ""
	}
	if language == "" {
		language = DefaultLanguage
	}

	for _, format := range s.attempts {
		text, err := s.stt.Recognize(ctx, audio, format, language)
		if err != nil {
			telemetry.TranscriptionsTotal.WithLabelValues(format.Encoding, "failed").Inc()
			s.log.Warn("Transcription attempt failed",
				zap.String("encoding", format.Encoding),
				zap.Int("sample_rate", format.SampleRate),
				zap.Error(err),
			)
			continue
		}
		telemetry.TranscriptionsTotal.WithLabelValues(format.Encoding, "ok").Inc()
		return text
	}

	s.log.Error("All transcription attempts failed",
		zap.Int("attempts", len(s.attempts)),
		zap.Int("audio_bytes", len(audio)),
	)
	return ""
}

// Synthesize renders text as MP3. An unsupported language is rejected before
// the provider is called; a provider failure yields a degraded response with
// no audio rather than an error.
func (s *Service) Synthesize(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error) {
	voice, ok := Voices[languageCode]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported language_code %q, expected one of %s",
			domain.ErrValidation, languageCode, strings.Join(SupportedLanguages(), ", "))
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}

	resp := &domain.VoiceResponse{Text: text, Language: languageCode}

	audio, err := s.tts.Synthesize(ctx, text, voice.LanguageCode, voice.Name)
	if err != nil {
		telemetry.SynthesesTotal.WithLabelValues(languageCode, "degraded").Inc()
		s.log.Warn("Speech synthesis failed, replying without audio",
			zap.String("language", languageCode),
			zap.Error(err),
		)
		resp.Degraded = true
		return resp, nil
	}

	telemetry.SynthesesTotal.WithLabelValues(languageCode, "ok").Inc()
	resp.Audio = base64.StdEncoding.EncodeToString(audio)
	return resp, nil
}
