package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/ports"
	"github.com/seu-repo/voice-banking/internal/service/voice"
)

// unheardText is spoken back when recorded audio yields no transcript.
const unheardText = "Sorry, I did not catch that. Could you please repeat?"

// Service puts the voice pipeline in front of the dialogue: audio turns are
// transcribed first, and replies are spoken when a language is requested.
type Service struct {
	dialogue ports.DialogueService
	voice    ports.VoiceService
	log      *zap.Logger
}

func NewService(dialogue ports.DialogueService, voice ports.VoiceService, log *zap.Logger) *Service {
	return &Service{
		dialogue: dialogue,
		voice:    voice,
		log:      log,
	}
}

func (s *Service) Start(ctx context.Context, req domain.ChatRequest) (*domain.TurnResult, error) {
	return s.turn(ctx, req, s.dialogue.Start, s.unheardStart)
}

func (s *Service) Continue(ctx context.Context, req domain.ChatRequest) (*domain.TurnResult, error) {
	return s.turn(ctx, req, s.dialogue.Continue, s.unheardContinue)
}

func (s *Service) Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return s.dialogue.Conversation(ctx, sessionID)
}

type turnFunc func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error)

// unheardFunc answers a turn whose audio could not be transcribed. The
// conversation is left untouched.
type unheardFunc func(ctx context.Context, sessionID string) (*domain.TurnResult, error)

func (s *Service) turn(ctx context.Context, req domain.ChatRequest, next turnFunc, unheard unheardFunc) (*domain.TurnResult, error) {
	if req.Language != "" {
		if _, ok := voice.Voices[req.Language]; !ok {
			return nil, fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, req.Language)
		}
	}

	utterance := strings.TrimSpace(req.Text)
	var transcript string
	if req.Audio != "" {
		audio, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			return nil, fmt.Errorf("%w: audio is not valid base64", domain.ErrValidation)
		}
		transcript = s.voice.Transcribe(ctx, audio, s.recognitionLanguage(req.Language))
		utterance = transcript
	}

	var (
		result *domain.TurnResult
		err    error
	)
	if req.Audio != "" && transcript == "" {
		s.log.Info("No speech recognized, asking to repeat", zap.String("session_id", req.SessionID))
		result, err = unheard(ctx, req.SessionID)
	} else {
		result, err = next(ctx, req.SessionID, utterance)
	}
	if err != nil {
		return nil, err
	}
	result.Transcript = transcript

	if req.Language != "" && result.Reply != "" {
		spoken, err := s.voice.Synthesize(ctx, result.Reply, req.Language)
		if err != nil {
			s.log.Warn("Reply synthesis failed",
				zap.String("session_id", result.SessionID),
				zap.Error(err),
			)
		} else {
			result.Audio = spoken.Audio
		}
	}

	return result, nil
}

func (s *Service) unheardStart(ctx context.Context, _ string) (*domain.TurnResult, error) {
	return &domain.TurnResult{State: domain.StateAwaitingIntent, Reply: unheardText}, nil
}

func (s *Service) unheardContinue(ctx context.Context, sessionID string) (*domain.TurnResult, error) {
	conv, err := s.dialogue.Conversation(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if conv.State.Terminal() {
		return nil, fmt.Errorf("%w: conversation %s is already finished (%s)", domain.ErrValidation, sessionID, conv.State)
	}
	return &domain.TurnResult{
		SessionID:    conv.SessionID,
		State:        conv.State,
		Reply:        unheardText,
		Intent:       conv.Intent.Intent,
		AuthRequired: conv.Intent.AuthRequired,
	}, nil
}

func (s *Service) recognitionLanguage(language string) string {
	if language == "" {
		return voice.DefaultLanguage
	}
	return language
}
