package ports

import (
	"context"

	"github.com/seu-repo/voice-banking/internal/domain"
)

type BankingService interface {
	GetBalances(ctx context.Context, req domain.BalanceRequest) (*domain.BalanceResponse, error)
	LookupCustomer(ctx context.Context, req domain.CustomerLookupRequest) (*domain.CustomerLookupResponse, error)
	FilterTransactions(ctx context.Context, req domain.TransactionsFilterRequest) (*domain.TransactionsResponse, error)
	UpdateCard(ctx context.Context, req domain.CardUpdateRequest) (*domain.CardUpdateResponse, error)
	UpdateContact(ctx context.Context, req domain.ContactUpdateRequest) (*domain.ContactUpdateResponse, error)
	OpenSavings(ctx context.Context, req domain.SavingsOpenRequest) (*domain.SavingsOpenResponse, error)
	CreateAppointment(ctx context.Context, req domain.AppointmentCreateRequest) (*domain.AppointmentCreateResponse, error)
}

// LanguageModel is the LLM / grounded-retrieval provider.
type LanguageModel interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error)
}

// SpeechRecognizer transcribes audio under one decoding assumption.
type SpeechRecognizer interface {
	Recognize(ctx context.Context, audio []byte, format domain.AudioFormat, language string) (string, error)
}

// SpeechSynthesizer returns encoded audio for the given text and voice.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, voiceName string) ([]byte, error)
}

type VoiceService interface {
	Transcribe(ctx context.Context, audio []byte, language string) string
	Synthesize(ctx context.Context, text, languageCode string) (*domain.VoiceResponse, error)
}

type DialogueService interface {
	Start(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error)
	Continue(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error)
	Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error)
}
