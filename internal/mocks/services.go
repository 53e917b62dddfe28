package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/ports"
)

// MockLanguageModel replays Replies in order unless GenerateFunc is set.
// Every request is recorded in Requests.
type MockLanguageModel struct {
	mu           sync.Mutex
	Replies      []string
	Grounding    []string
	Requests     []domain.GenerateRequest
	GenerateFunc func(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error)
}

func (m *MockLanguageModel) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		m.mu.Unlock()
		return m.GenerateFunc(ctx, req)
	}
	defer m.mu.Unlock()

	if len(m.Replies) == 0 {
		return nil, errors.New("mock language model: no reply scripted")
	}
	reply := m.Replies[0]
	m.Replies = m.Replies[1:]

	resp := &domain.GenerateResponse{Text: reply}
	if req.Grounded {
		resp.Grounding = m.Grounding
	}
	return resp, nil
}

// Calls returns how many requests were made.
func (m *MockLanguageModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockSpeechRecognizer records the formats it was asked to try.
type MockSpeechRecognizer struct {
	mu            sync.Mutex
	Formats       []domain.AudioFormat
	RecognizeFunc func(ctx context.Context, audio []byte, format domain.AudioFormat, language string) (string, error)
}

func (m *MockSpeechRecognizer) Recognize(ctx context.Context, audio []byte, format domain.AudioFormat, language string) (string, error) {
	m.mu.Lock()
	m.Formats = append(m.Formats, format)
	m.mu.Unlock()
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, audio, format, language)
	}
	return "", nil
}

type MockSpeechSynthesizer struct {
	mu             sync.Mutex
	CallCount      int
	SynthesizeFunc func(ctx context.Context, text, languageCode, voiceName string) ([]byte, error)
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error) {
	m.mu.Lock()
	m.CallCount++
	m.mu.Unlock()
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, languageCode, voiceName)
	}
	return []byte("audio"), nil
}

// StaticDataStoreProvider hands out a fixed store or error.
type StaticDataStoreProvider struct {
	Store ports.DataStore
	Err   error
}

func (p StaticDataStoreProvider) DataStore(ctx context.Context) (ports.DataStore, error) {
	return p.Store, p.Err
}

// MockVoiceService is a mock implementation of ports.VoiceService
type MockVoiceService struct {
	TranscribeFunc func(ctx context.Context, audio []byte, language string) string
	SynthesizeFunc func(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error)
}

func (m *MockVoiceService) Transcribe(ctx context.Context, audio []byte, language string) string {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, language)
	}
	return ""
}

func (m *MockVoiceService) Synthesize(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, languageCode)
	}
	return &domain.VoiceResponse{Text: text, Language: languageCode}, nil
}

// MockDialogueService is a mock implementation of ports.DialogueService
type MockDialogueService struct {
	StartFunc        func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error)
	ContinueFunc     func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error)
	ConversationFunc func(ctx context.Context, sessionID string) (*domain.Conversation, error)
}

func (m *MockDialogueService) Start(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, sessionID, utterance)
	}
	return &domain.TurnResult{SessionID: sessionID, State: domain.StateAwaitingAuthOrSlots}, nil
}

func (m *MockDialogueService) Continue(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
	if m.ContinueFunc != nil {
		return m.ContinueFunc(ctx, sessionID, utterance)
	}
	return &domain.TurnResult{SessionID: sessionID, State: domain.StateFillingSlots}, nil
}

func (m *MockDialogueService) Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	if m.ConversationFunc != nil {
		return m.ConversationFunc(ctx, sessionID)
	}
	return nil, domain.ErrNotFound
}
