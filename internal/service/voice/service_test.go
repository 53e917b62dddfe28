package voice

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/mocks"
)

func TestTranscribe_FirstSuccessfulAttemptWins(t *testing.T) {
	stt := &mocks.MockSpeechRecognizer{
		RecognizeFunc: func(_ context.Context, _ []byte, format domain.AudioFormat, language string) (string, error) {
			assert.Equal(t, "nl-BE", language)
			if format.Encoding == "WEBM_OPUS" {
				return "", errors.New("bad encoding")
			}
			return "wat is mijn saldo", nil
		},
	}
	svc := NewService(stt, &mocks.MockSpeechSynthesizer{}, zap.NewNop())

	text := svc.Transcribe(context.Background(), []byte("audio"), "nl-BE")
	assert.Equal(t, "wat is mijn saldo", text)
	assert.Equal(t, DecodeAttempts[:2], stt.Formats)
}

func TestTranscribe_AllAttemptsFail(t *testing.T) {
	stt := &mocks.MockSpeechRecognizer{
		RecognizeFunc: func(context.Context, []byte, domain.AudioFormat, string) (string, error) {
			return "", domain.ErrUpstreamUnavailable
		},
	}
	svc := NewService(stt, &mocks.MockSpeechSynthesizer{}, zap.NewNop())

	assert.Equal(t, "", svc.Transcribe(context.Background(), []byte("audio"), ""))
	assert.Equal(t, DecodeAttempts, stt.Formats, "every format is tried in order")
}

func TestTranscribe_EmptyAudioSkipsProvider(t *testing.T) {
	stt := &mocks.MockSpeechRecognizer{}
	svc := NewService(stt, &mocks.MockSpeechSynthesizer{}, zap.NewNop())

	assert.Equal(t, "", svc.Transcribe(context.Background(), nil, "en-US"))
	assert.Empty(t, stt.Formats)
}

func TestSynthesize(t *testing.T) {
	tts := &mocks.MockSpeechSynthesizer{
		SynthesizeFunc: func(_ context.Context, text, languageCode, voiceName string) ([]byte, error) {
			assert.Equal(t, "fr-FR", languageCode)
			assert.Equal(t, "fr-FR-Standard-A", voiceName)
			return []byte("mp3"), nil
		},
	}
	svc := NewService(&mocks.MockSpeechRecognizer{}, tts, zap.NewNop())

	resp, err := svc.Synthesize(context.Background(), "Bonjour", "fr-BE")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3")), resp.Audio)
	assert.Equal(t, "fr-BE", resp.Language)
	assert.False(t, resp.Degraded)
}

func TestSynthesize_UnsupportedLanguageRejectedBeforeProvider(t *testing.T) {
	tts := &mocks.MockSpeechSynthesizer{}
	svc := NewService(&mocks.MockSpeechRecognizer{}, tts, zap.NewNop())

	_, err := svc.Synthesize(context.Background(), "hola", "es-ES")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, tts.CallCount)
}

func TestSynthesize_ProviderFailureDegrades(t *testing.T) {
	tts := &mocks.MockSpeechSynthesizer{
		SynthesizeFunc: func(context.Context, string, string, string) ([]byte, error) {
			return nil, domain.ErrUpstreamTimeout
		},
	}
	svc := NewService(&mocks.MockSpeechRecognizer{}, tts, zap.NewNop())

	resp, err := svc.Synthesize(context.Background(), "Hello", "en-GB")
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Empty(t, resp.Audio)
	assert.Equal(t, "Hello", resp.Text)
}

func TestSupportedLanguages(t *testing.T) {
	assert.Equal(t, []string{"de-DE", "en-GB", "en-US", "fr-BE", "nl-BE", "nl-NL"}, SupportedLanguages())
}
