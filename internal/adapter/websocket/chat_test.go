package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/mocks"
	"github.com/seu-repo/voice-banking/internal/service/chat"
)

func TestDecodeFrame(t *testing.T) {
	req, ok := decodeFrame(websocket.TextMessage, []byte("  block my card "))
	require.True(t, ok)
	assert.Equal(t, "block my card", req.Text)

	req, ok = decodeFrame(websocket.TextMessage, []byte(`{"text":"C001","language":"nl-BE"}`))
	require.True(t, ok)
	assert.Equal(t, "C001", req.Text)
	assert.Equal(t, "nl-BE", req.Language)

	req, ok = decodeFrame(websocket.BinaryMessage, []byte("hi"))
	require.True(t, ok)
	assert.Equal(t, "aGk=", req.Audio)

	_, ok = decodeFrame(websocket.TextMessage, []byte("   "))
	assert.False(t, ok)
	_, ok = decodeFrame(websocket.TextMessage, []byte(`{"language":"en-US"}`))
	assert.False(t, ok)
	_, ok = decodeFrame(websocket.BinaryMessage, nil)
	assert.False(t, ok)
}

func newTestHandler(dialogue *mocks.MockDialogueService) *ChatHandler {
	svc := chat.NewService(dialogue, &mocks.MockVoiceService{}, zap.NewNop())
	return NewChatHandler(svc, NewHub(), zap.NewNop())
}

func TestTurn_StartsThenContinues(t *testing.T) {
	var calls []string
	dialogue := &mocks.MockDialogueService{
		StartFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			calls = append(calls, "start:"+sessionID)
			return &domain.TurnResult{SessionID: "s-1", State: domain.StateAwaitingAuthOrSlots}, nil
		},
		ContinueFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			calls = append(calls, "continue:"+sessionID)
			return &domain.TurnResult{SessionID: sessionID, State: domain.StateReadyToDispatch}, nil
		},
	}
	h := newTestHandler(dialogue)
	client := &Client{}

	h.turn(context.Background(), client, domain.ChatRequest{Text: "balance"})
	h.turn(context.Background(), client, domain.ChatRequest{Text: "C001"})
	assert.True(t, client.finished)

	// A finished conversation is replaced by a fresh one.
	h.turn(context.Background(), client, domain.ChatRequest{Text: "again", SessionID: "ignored"})

	assert.Equal(t, []string{"start:", "continue:s-1", "start:"}, calls)
}

func TestTurn_ErrorFrame(t *testing.T) {
	dialogue := &mocks.MockDialogueService{
		ContinueFunc: func(ctx context.Context, sessionID, utterance string) (*domain.TurnResult, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := newTestHandler(dialogue)
	client := &Client{sessionID: "expired"}

	var frame errorFrame
	require.NoError(t, json.Unmarshal(h.turn(context.Background(), client, domain.ChatRequest{Text: "hi"}), &frame))
	assert.Equal(t, 404, frame.Status)
	assert.Equal(t, "expired", client.sessionID)
}

func TestHub_BroadcastAndShutdown(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	a := hub.newClient(nil, "", "")
	b := hub.newClient(nil, "", "")
	require.True(t, hub.add(a))
	require.True(t, hub.add(b))
	assert.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	require.True(t, hub.Broadcast([]byte("maintenance")))
	assert.Equal(t, []byte("maintenance"), <-a.send)
	assert.Equal(t, []byte("maintenance"), <-b.send)

	hub.remove(a)
	<-a.quit
	assert.False(t, a.push([]byte("late")))

	cancel()
	<-b.quit
	<-hub.done
	assert.Equal(t, 0, hub.Count())
	assert.False(t, hub.Broadcast([]byte("gone")))
}
