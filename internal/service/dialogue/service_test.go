package dialogue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/mocks"
	"github.com/seu-repo/voice-banking/internal/service/nlu"
)

const (
	balanceIntent = `{"intent":"Query for their account balance","summary":"balance","auth_required":true,"questions":"What is your customer id?"}`
	cardIntent    = `{"intent":"Block or unblock or card","summary":"lost card","auth_required":true,"questions":"What is your customer id?"}`
	infoIntent    = `{"intent":"Get more information about the bank's product","summary":"savings","auth_required":false}`
	otherIntent   = `{"intent":"Something else","summary":"weather","auth_required":false}`
)

type fixture struct {
	llm      *mocks.MockLanguageModel
	banking  *mocks.MockBankingService
	sessions *mocks.MockCache
	svc      *Service
}

func newFixture(replies ...string) *fixture {
	f := &fixture{
		llm:      &mocks.MockLanguageModel{Replies: replies, Grounding: []string{"doc"}},
		banking:  &mocks.MockBankingService{},
		sessions: mocks.NewMockCache(),
	}
	f.svc = NewService(f.llm, f.banking, f.sessions, 0, zap.NewNop())
	return f
}

func (f *fixture) conversation(t *testing.T, id string) *domain.Conversation {
	t.Helper()
	conv, err := f.svc.Conversation(context.Background(), id)
	require.NoError(t, err)
	return conv
}

func TestStart_RoutedIntentAwaitsSlots(t *testing.T) {
	f := newFixture("You can check balances in the app.", balanceIntent)

	res, err := f.svc.Start(context.Background(), "s1", "What is my balance?")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingAuthOrSlots, res.State)
	assert.Equal(t, domain.IntentAccountBalance, res.Intent)
	assert.True(t, res.AuthRequired)
	assert.Equal(t, "You can check balances in the app.\nI need more information from you: What is your customer id?", res.Reply)
	assert.Equal(t, "doc", res.Documents)

	conv := f.conversation(t, "s1")
	require.Len(t, conv.History, 2)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Text: "What is my balance?"}, conv.History[0])
	assert.Equal(t, domain.RoleModel, conv.History[1].Role)
}

func TestStart_GeneratesSessionID(t *testing.T) {
	f := newFixture("info", balanceIntent)

	res, err := f.svc.Start(context.Background(), "", "balance please")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, []string{res.SessionID}, f.sessions.Keys())
}

func TestStart_SomethingElseAborts(t *testing.T) {
	f := newFixture("no idea", otherIntent)

	res, err := f.svc.Start(context.Background(), "s1", "what's the weather")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAborted, res.State)
	assert.Equal(t, nlu.RetryPrompt, res.Reply)
	assert.Empty(t, res.Documents)
}

func TestStart_UnparseableIntentAborts(t *testing.T) {
	f := newFixture("info", "this is not json")

	res, err := f.svc.Start(context.Background(), "s1", "hmm")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAborted, res.State)
	assert.Equal(t, nlu.RetryPrompt, res.Reply)
}

func TestStart_InformationalIntentIsDone(t *testing.T) {
	f := newFixture("Orange Savings pays 2.15% AER.", infoIntent)

	res, err := f.svc.Start(context.Background(), "s1", "Tell me about savings")
	require.NoError(t, err)
	assert.Equal(t, domain.StateInformationalDone, res.State)
	assert.Equal(t, "Orange Savings pays 2.15% AER.", res.Reply)

	_, err = f.svc.Continue(context.Background(), "s1", "thanks")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStart_UpstreamFailureDegrades(t *testing.T) {
	f := newFixture()
	f.llm.GenerateFunc = func(context.Context, domain.GenerateRequest) (*domain.GenerateResponse, error) {
		return nil, domain.ErrUpstreamUnavailable
	}

	res, err := f.svc.Start(context.Background(), "s1", "balance")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAborted, res.State)
	assert.Equal(t, nlu.RetryPrompt, res.Reply)
}

func TestStart_RequiresUtterance(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Start(context.Background(), "s1", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, f.llm.Calls())
}

func TestContinue_FillsSlotsThenDispatches(t *testing.T) {
	f := newFixture(
		"info", cardIntent,
		"Which action would you like, block or unblock?",
		"Thank you for your cooperation, I will now proceed with your request.",
		`{"customer_id":"C002","action":"block"}`,
	)
	var got domain.CardUpdateRequest
	f.banking.UpdateCardFunc = func(_ context.Context, req domain.CardUpdateRequest) (*domain.CardUpdateResponse, error) {
		got = req
		return &domain.CardUpdateResponse{Status: "ok", RequestID: "CARD-0000ABCD", NewStatus: "Blocked by Customer"}, nil
	}
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", "I lost my card")
	require.NoError(t, err)

	res, err := f.svc.Continue(ctx, "s1", "My customer id is C002")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFillingSlots, res.State)
	assert.Equal(t, "Which action would you like, block or unblock?", res.Reply)
	assert.Nil(t, res.Dispatch)
	assert.Len(t, f.conversation(t, "s1").History, 4)

	slotReq := f.llm.Requests[2]
	assert.Contains(t, slotReq.SystemInstruction, nlu.CompletionPhrase)
	assert.Len(t, slotReq.Turns, 3)

	res, err = f.svc.Continue(ctx, "s1", "Block it please")
	require.NoError(t, err)
	assert.Equal(t, domain.StateReadyToDispatch, res.State)
	require.NotNil(t, res.Dispatch)
	assert.Equal(t, nlu.OpCardUpdate, res.Dispatch.Operation)
	assert.Empty(t, res.Dispatch.Error)
	assert.Equal(t, domain.CardUpdateRequest{CustomerID: "C002", Action: domain.CardActionBlock}, got)

	conv := f.conversation(t, "s1")
	assert.Len(t, conv.History, 5, "the completion reply is not appended")
	assert.Equal(t, domain.RoleUser, conv.History[4].Role)

	_, err = f.svc.Continue(ctx, "s1", "anything else?")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestContinue_DispatchFailureIsReported(t *testing.T) {
	f := newFixture(
		"info", balanceIntent,
		"Thank you for your cooperation, I will now proceed with your request.",
		`{"customer_id":"C404"}`,
	)
	f.banking.GetBalancesFunc = func(context.Context, domain.BalanceRequest) (*domain.BalanceResponse, error) {
		return nil, domain.ErrCustomerNotFound
	}
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", "balance")
	require.NoError(t, err)

	res, err := f.svc.Continue(ctx, "s1", "I am C404")
	require.NoError(t, err)
	assert.Equal(t, domain.StateReadyToDispatch, res.State)
	require.NotNil(t, res.Dispatch)
	assert.Contains(t, res.Dispatch.Error, "customer not found")
	assert.Equal(t, map[string]interface{}{"customer_id": "C404"}, res.Dispatch.Payload)
}

func TestContinue_InvalidPayloadIsReported(t *testing.T) {
	f := newFixture(
		"info", cardIntent,
		"Thank you for your cooperation, I will now proceed with your request.",
		`{"customer_id":"C002","action":"freeze"}`,
	)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", "card")
	require.NoError(t, err)

	res, err := f.svc.Continue(ctx, "s1", "freeze it")
	require.NoError(t, err)
	require.NotNil(t, res.Dispatch)
	assert.NotEmpty(t, res.Dispatch.Error)
	assert.Nil(t, res.Dispatch.Result)
}

func TestContinue_UpstreamFailureKeepsHistory(t *testing.T) {
	f := newFixture("info", balanceIntent)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "s1", "balance")
	require.NoError(t, err)

	f.llm.GenerateFunc = func(context.Context, domain.GenerateRequest) (*domain.GenerateResponse, error) {
		return nil, domain.ErrUpstreamTimeout
	}
	res, err := f.svc.Continue(ctx, "s1", "C001")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingAuthOrSlots, res.State)
	assert.NotEmpty(t, res.Reply)
	assert.Len(t, f.conversation(t, "s1").History, 2)
}

func TestContinue_UnknownSession(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Continue(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRestrictToProducts(t *testing.T) {
	resp := &domain.TransactionsResponse{
		CustomerID: "C001",
		Currency:   "EUR",
		Items: []domain.TransactionItem{
			{TransactionID: "T1", ProductID: "P-001", Amount: 10.10},
			{TransactionID: "T2", ProductID: "P-002", Amount: -5},
			{TransactionID: "T3", ProductID: "P-001", Amount: -2.05},
		},
	}
	out := restrictToProducts(resp, map[string]bool{"P-001": true})
	require.Len(t, out.Items, 2)
	assert.Equal(t, 8.05, out.Total)
}

func TestConversationIsStoredAsJSON(t *testing.T) {
	f := newFixture("info", balanceIntent)
	_, err := f.svc.Start(context.Background(), "s1", "balance")
	require.NoError(t, err)

	raw, err := f.sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	var conv domain.Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &conv))
	assert.Equal(t, domain.StateAwaitingAuthOrSlots, conv.State)
}
