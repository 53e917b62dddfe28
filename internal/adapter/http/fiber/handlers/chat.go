package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/service/chat"
)

type ChatHandler struct {
	chat *chat.Service
	log  *zap.Logger
}

func NewChatHandler(service *chat.Service, log *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat: service,
		log:  log,
	}
}

func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/chat")
	group.Post("/start", h.Start)
	group.Post("/continue", h.Continue)
	group.Get("/:session_id", h.Get)
}

func (h *ChatHandler) Start(c *fiber.Ctx) error {
	var req domain.ChatRequest
	if err := decodeStrict(c.Body(), &req); err != nil {
		return err
	}

	result, err := h.chat.Start(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.log.Debug("Conversation started",
		zap.String("session_id", result.SessionID),
		zap.String("state", string(result.State)),
	)
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ChatHandler) Continue(c *fiber.Ctx) error {
	var req domain.ChatRequest
	if err := decodeStrict(c.Body(), &req); err != nil {
		return err
	}

	result, err := h.chat.Continue(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	conv, err := h.chat.Conversation(c.UserContext(), c.Params("session_id"))
	if err != nil {
		return err
	}
	return c.JSON(conv)
}
