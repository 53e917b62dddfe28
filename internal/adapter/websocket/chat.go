package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/service/chat"
)

// ChatHandler runs a conversation over a websocket. Every inbound frame is one
// user turn: text frames carry an utterance or a JSON chat request, binary
// frames carry recorded audio. A finished conversation is followed by a new
// one on the next frame. A session_id query parameter resumes an existing
// conversation.
type ChatHandler struct {
	chat *chat.Service
	hub  *Hub
	log  *zap.Logger
}

func NewChatHandler(service *chat.Service, hub *Hub, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat: service,
		hub:  hub,
		log:  log,
	}
}

type errorFrame struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// HandleChat serves one websocket connection until either side closes it.
func (h *ChatHandler) HandleChat(conn *websocket.Conn) {
	client := h.hub.newClient(conn, conn.Query("session_id"), conn.Query("language"))
	if !h.hub.add(client) {
		return
	}
	go client.writePump()
	defer func() {
		h.hub.remove(client)
		client.stop()
		<-client.written
	}()

	ctx := context.Background()
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Chat connection closed unexpectedly", zap.Error(err))
			}
			return
		}

		req, ok := decodeFrame(messageType, message)
		if !ok {
			continue
		}

		reply := h.turn(ctx, client, req)
		if !client.push(reply) {
			return
		}
	}
}

func (h *ChatHandler) turn(ctx context.Context, client *Client, req domain.ChatRequest) []byte {
	if req.Language == "" {
		req.Language = client.language
	}

	var (
		result *domain.TurnResult
		err    error
	)
	if client.sessionID == "" || client.finished {
		if client.finished {
			req.SessionID = ""
		}
		result, err = h.chat.Start(ctx, req)
	} else {
		req.SessionID = client.sessionID
		result, err = h.chat.Continue(ctx, req)
	}

	if err != nil {
		status := middleware.StatusFor(err)
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			h.log.Error("Chat turn failed", zap.String("session_id", client.sessionID), zap.Error(err))
			message = "internal server error"
		}
		data, _ := json.Marshal(errorFrame{Error: message, Status: status})
		return data
	}

	client.sessionID = result.SessionID
	client.finished = result.State.Terminal()

	data, err := json.Marshal(result)
	if err != nil {
		h.log.Error("Failed to encode chat turn", zap.Error(err))
		data, _ = json.Marshal(errorFrame{Error: "internal server error", Status: fiber.StatusInternalServerError})
	}
	return data
}

// decodeFrame turns an inbound frame into a chat request. Frames that carry
// nothing are skipped.
func decodeFrame(messageType int, message []byte) (domain.ChatRequest, bool) {
	var req domain.ChatRequest
	switch messageType {
	case websocket.BinaryMessage:
		if len(message) == 0 {
			return req, false
		}
		req.Audio = base64.StdEncoding.EncodeToString(message)
		return req, true
	case websocket.TextMessage:
		text := strings.TrimSpace(string(message))
		if text == "" {
			return req, false
		}
		if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &req) == nil {
			return req, req.Text != "" || req.Audio != ""
		}
		req.Text = text
		return req, true
	}
	return req, false
}

// SetupChatRoutes mounts the chat websocket on /ws/chat.
func SetupChatRoutes(app fiber.Router, handler *ChatHandler) {
	app.Use("/ws/chat", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/chat", websocket.New(handler.HandleChat))
}
