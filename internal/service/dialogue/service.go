package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
	"github.com/seu-repo/voice-banking/internal/ports"
	"github.com/seu-repo/voice-banking/internal/service/nlu"
)

const (
	questionsLead   = "I need more information from you: "
	unavailableText = "Sorry, I cannot process your request right now. Please try again in a moment."
	repeatText      = "Sorry, I did not catch that. Could you please repeat your answer?"
)

const DefaultSessionTTL = 30 * time.Minute

// Service runs the slot-filling conversation. Conversations live in the
// session cache between turns; concurrent turns on one session are last
// writer wins.
type Service struct {
	llm        ports.LanguageModel
	classifier *nlu.Classifier
	retriever  *nlu.Retriever
	banking    ports.BankingService
	sessions   ports.Cache
	ttl        time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewService(llm ports.LanguageModel, banking ports.BankingService, sessions ports.Cache, ttl time.Duration, log *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		llm:        llm,
		classifier: nlu.NewClassifier(llm, log),
		retriever:  nlu.NewRetriever(llm, log),
		banking:    banking,
		sessions:   sessions,
		ttl:        ttl,
		log:        log,
		now:        time.Now,
	}
}

// Start opens a conversation: it retrieves grounded information, classifies
// the utterance and decides the first state. An empty sessionID gets a new id.
func (s *Service) Start(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "dialogue.start")
	defer span.End()

	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, fmt.Errorf("%w: utterance is required", domain.ErrValidation)
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	info, documents, err := s.retriever.Retrieve(ctx, utterance)
	if err != nil {
		s.log.Warn("Grounded retrieval failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	intent, err := s.classifier.Classify(ctx, utterance)
	if err != nil {
		s.log.Warn("Intent classification failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	reply := composeReply(info, intent.Questions)
	now := s.now()
	conv := &domain.Conversation{
		SessionID: sessionID,
		Intent:    intent,
		Documents: documents,
		History: []domain.Turn{
			{Role: domain.RoleUser, Text: utterance},
			{Role: domain.RoleModel, Text: reply},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, routed := nlu.RouteFor(intent.Intent)
	switch {
	case intent.Empty() || intent.Intent == domain.IntentSomethingElse:
		conv.State = domain.StateAborted
		reply = nlu.RetryPrompt
		conv.Documents = ""
	case nlu.IsInformational(intent.Intent):
		conv.State = domain.StateInformationalDone
	case routed:
		conv.State = domain.StateAwaitingAuthOrSlots
	default:
		conv.State = domain.StateAborted
		reply = nlu.RetryPrompt
	}
	if reply == "" {
		reply = unavailableText
	}

	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("dialogue.state", string(conv.State)))
	telemetry.DialogueTurnsTotal.WithLabelValues(string(conv.State)).Inc()
	s.log.Info("Conversation started",
		zap.String("session_id", sessionID),
		zap.String("intent", string(intent.Intent)),
		zap.String("state", string(conv.State)),
	)

	return &domain.TurnResult{
		SessionID:    sessionID,
		State:        conv.State,
		Reply:        reply,
		Intent:       intent.Intent,
		AuthRequired: intent.AuthRequired,
		Documents:    conv.Documents,
	}, nil
}

// Continue feeds one more user answer into a slot-filling conversation. Once
// the model says the completion phrase the payload is extracted and the
// banking operation dispatched.
func (s *Service) Continue(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "dialogue.continue")
	defer span.End()

	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, fmt.Errorf("%w: utterance is required", domain.ErrValidation)
	}

	conv, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if conv.State.Terminal() {
		return nil, fmt.Errorf("%w: conversation %s is already finished (%s)", domain.ErrValidation, sessionID, conv.State)
	}
	route, ok := nlu.RouteFor(conv.Intent.Intent)
	if !ok {
		return nil, fmt.Errorf("%w: conversation %s has no operation to fill", domain.ErrValidation, sessionID)
	}

	userTurn := domain.Turn{Role: domain.RoleUser, Text: utterance}
	turns := make([]domain.Turn, 0, len(conv.History)+1)
	turns = append(turns, conv.History...)
	turns = append(turns, userTurn)

	resp, err := s.llm.Generate(ctx, domain.GenerateRequest{
		SystemInstruction: nlu.SlotFillingInstruction(route),
		Turns:             turns,
		TopP:              1,
	})
	if err != nil {
		// history stays as it was so the user can simply answer again
		s.log.Warn("Slot filling turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return s.result(conv, repeatText, nil), nil
	}

	reply := strings.TrimSpace(resp.Text)
	conv.History = turns
	conv.UpdatedAt = s.now()

	var dispatch *domain.DispatchResult
	if strings.Contains(reply, nlu.CompletionPhrase) {
		conv.State = domain.StateReadyToDispatch
		dispatch = s.dispatch(ctx, route, conv.History)
	} else {
		conv.State = domain.StateFillingSlots
		conv.History = append(conv.History, domain.Turn{Role: domain.RoleModel, Text: reply})
	}

	if err := s.save(ctx, conv); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("dialogue.state", string(conv.State)))
	telemetry.DialogueTurnsTotal.WithLabelValues(string(conv.State)).Inc()
	return s.result(conv, reply, dispatch), nil
}

// Conversation returns the stored state of a session.
func (s *Service) Conversation(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return s.load(ctx, sessionID)
}

func (s *Service) result(conv *domain.Conversation, reply string, dispatch *domain.DispatchResult) *domain.TurnResult {
	return &domain.TurnResult{
		SessionID:    conv.SessionID,
		State:        conv.State,
		Reply:        reply,
		Intent:       conv.Intent.Intent,
		AuthRequired: conv.Intent.AuthRequired,
		Dispatch:     dispatch,
	}
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrValidation)
	}
	raw, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			return nil, fmt.Errorf("%w: no conversation for session %s", domain.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return nil, fmt.Errorf("failed to decode conversation %s: %w", sessionID, err)
	}
	return &conv, nil
}

func (s *Service) save(ctx context.Context, conv *domain.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := s.sessions.Set(ctx, conv.SessionID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to store conversation: %w", err)
	}
	return nil
}

// composeReply joins retrieved information with the classifier's follow-up
// questions.
func composeReply(info, questions string) string {
	questions = strings.TrimSpace(questions)
	if questions == "" {
		return info
	}
	if info == "" {
		return questionsLead + questions
	}
	return info + "\n" + questionsLead + questions
}
