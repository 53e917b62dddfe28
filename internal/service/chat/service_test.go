package chat

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
	"github.com/seu-repo/voice-banking/internal/service/voice"
)

func TestStart_TextTurn(t *testing.T) {
	var gotUtterance string
	dialogue := &mocks.MockDialogueService{
		StartFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			gotUtterance = utterance
			return &domain.TurnResult{SessionID: "s-1", Reply: "What is your customer id?"}, nil
		},
	}
	voiceSvc := &mocks.MockVoiceService{
		SynthesizeFunc: func(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error) {
			t.Fatal("synthesis not requested")
			return nil, nil
		},
	}

	svc := NewService(dialogue, voiceSvc, zap.NewNop())
	result, err := svc.Start(context.Background(), domain.ChatRequest{Text: "  my balance please "})

	require.NoError(t, err)
	assert.Equal(t, "my balance please", gotUtterance)
	assert.Empty(t, result.Audio)
	assert.Empty(t, result.Transcript)
}

func TestContinue_AudioInSpokenReplyOut(t *testing.T) {
	var gotLanguage string
	voiceSvc := &mocks.MockVoiceService{
		TranscribeFunc: func(ctx context.Context, audio []byte, language string) string {
			gotLanguage = language
			assert.Equal(t, []byte("pcm"), audio)
			return "C001"
		},
		SynthesizeFunc: func(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error) {
			return &domain.VoiceResponse{Text: text, Audio: "bXAz", Language: languageCode}, nil
		},
	}
	dialogue := &mocks.MockDialogueService{
		ContinueFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			assert.Equal(t, "s-1", sessionID)
			assert.Equal(t, "C001", utterance)
			return &domain.TurnResult{SessionID: sessionID, Reply: "Thanks"}, nil
		},
	}

	svc := NewService(dialogue, voiceSvc, zap.NewNop())
	result, err := svc.Continue(context.Background(), domain.ChatRequest{
		SessionID: "s-1",
		Audio:     base64.StdEncoding.EncodeToString([]byte("pcm")),
		Language:  "nl-BE",
	})

	require.NoError(t, err)
	assert.Equal(t, "nl-BE", gotLanguage)
	assert.Equal(t, "C001", result.Transcript)
	assert.Equal(t, "bXAz", result.Audio)
}

func TestTurn_DefaultRecognitionLanguage(t *testing.T) {
	var gotLanguage string
	voiceSvc := &mocks.MockVoiceService{
		TranscribeFunc: func(ctx context.Context, audio []byte, language string) string {
			gotLanguage = language
			return "hello"
		},
	}
	svc := NewService(&mocks.MockDialogueService{}, voiceSvc, zap.NewNop())

	_, err := svc.Start(context.Background(), domain.ChatRequest{Audio: "aGk="})
	require.NoError(t, err)
	assert.Equal(t, "en-US", gotLanguage)
}

func TestTurn_Validation(t *testing.T) {
	svc := NewService(&mocks.MockDialogueService{}, &mocks.MockVoiceService{}, zap.NewNop())

	_, err := svc.Start(context.Background(), domain.ChatRequest{Text: "hi", Language: "xx-XX"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Start(context.Background(), domain.ChatRequest{Audio: "not base64!"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTurn_SynthesisFailureKeepsTextReply(t *testing.T) {
	voiceSvc := &mocks.MockVoiceService{
		SynthesizeFunc: func(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error) {
			return nil, errors.New("boom")
		},
	}
	dialogue := &mocks.MockDialogueService{
		StartFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			return &domain.TurnResult{SessionID: "s-2", Reply: "Hello"}, nil
		},
	}
	svc := NewService(dialogue, voiceSvc, zap.NewNop())

	result, err := svc.Start(context.Background(), domain.ChatRequest{Text: "hi", Language: "en-GB"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", result.Reply)
	assert.Empty(t, result.Audio)
}

func TestTurn_DialogueErrorPropagates(t *testing.T) {
	dialogue := &mocks.MockDialogueService{
		ContinueFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc := NewService(dialogue, &mocks.MockVoiceService{}, zap.NewNop())

	_, err := svc.Continue(context.Background(), domain.ChatRequest{SessionID: "gone", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStart_UnrecognizedAudioAsksToRepeat(t *testing.T) {
	stt := &mocks.MockSpeechRecognizer{
		RecognizeFunc: func(ctx context.Context, audio []byte, format domain.AudioFormat, language string) (string, error) {
			return "", errors.New("speech api down")
		},
	}
	tts := &mocks.MockSpeechSynthesizer{
		SynthesizeFunc: func(ctx context.Context, text, languageCode, voiceName string) ([]byte, error) {
			return []byte("mp3"), nil
		},
	}
	dialogue := &mocks.MockDialogueService{
		StartFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			t.Fatal("dialogue must not run without an utterance")
			return nil, nil
		},
	}
	svc := NewService(dialogue, voice.NewService(stt, tts, zap.NewNop()), zap.NewNop())

	result, err := svc.Start(context.Background(), domain.ChatRequest{
		Audio:    base64.StdEncoding.EncodeToString([]byte("noise")),
		Language: "en-US",
	})

	require.NoError(t, err)
	assert.Equal(t, unheardText, result.Reply)
	assert.Equal(t, domain.StateAwaitingIntent, result.State)
	assert.Empty(t, result.SessionID)
	assert.Empty(t, result.Transcript)
	assert.NotEmpty(t, result.Audio)
}

func TestContinue_UnrecognizedAudioKeepsState(t *testing.T) {
	voiceSvc := &mocks.MockVoiceService{
		TranscribeFunc: func(ctx context.Context, audio []byte, language string) string { return "" },
	}
	dialogue := &mocks.MockDialogueService{
		ContinueFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			t.Fatal("dialogue must not run without an utterance")
			return nil, nil
		},
		ConversationFunc: func(ctx context.Context, sessionID string) (*domain.Conversation, error) {
			switch sessionID {
			case "s-1":
				return &domain.Conversation{
					SessionID: "s-1",
					State:     domain.StateFillingSlots,
					Intent:    domain.IntentResult{Intent: domain.IntentAccountBalance, AuthRequired: true},
				}, nil
			case "s-done":
				return &domain.Conversation{SessionID: "s-done", State: domain.StateAborted}, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	svc := NewService(dialogue, voiceSvc, zap.NewNop())
	audio := base64.StdEncoding.EncodeToString([]byte("noise"))

	result, err := svc.Continue(context.Background(), domain.ChatRequest{SessionID: "s-1", Audio: audio})
	require.NoError(t, err)
	assert.Equal(t, "s-1", result.SessionID)
	assert.Equal(t, domain.StateFillingSlots, result.State)
	assert.Equal(t, domain.IntentAccountBalance, result.Intent)
	assert.True(t, result.AuthRequired)
	assert.Equal(t, unheardText, result.Reply)

	_, err = svc.Continue(context.Background(), domain.ChatRequest{SessionID: "s-done", Audio: audio})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Continue(context.Background(), domain.ChatRequest{SessionID: "gone", Audio: audio})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
