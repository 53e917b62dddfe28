package handlers

import (
	"encoding/base64"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/ports"
	"github.com/seu-repo/voice-banking/internal/service/voice"
)

type VoiceHandler struct {
	service ports.VoiceService
	log     *zap.Logger
}

func NewVoiceHandler(service ports.VoiceService, log *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		service: service,
		log:     log,
	}
}

func (h *VoiceHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/voice")
	group.Post("/transcribe", h.Transcribe)
	group.Post("/synthesize", h.Synthesize)
	group.Get("/languages", h.Languages)
}

type TranscribeRequest struct {
	Audio    string `json:"audio"` // Base64
	Language string `json:"language"`
}

type SynthesizeRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

// Transcribe never fails on provider errors: an audio clip nobody could decode
// yields an empty transcript.
func (h *VoiceHandler) Transcribe(c *fiber.Ctx) error {
	var req TranscribeRequest
	if err := decodeStrict(c.Body(), &req); err != nil {
		return err
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil || len(audio) == 0 {
		return fmt.Errorf("%w: audio must be non-empty base64", domain.ErrValidation)
	}

	language := req.Language
	if language == "" {
		language = voice.DefaultLanguage
	}

	transcript := h.service.Transcribe(c.UserContext(), audio, language)
	return c.JSON(fiber.Map{"transcript": transcript})
}

func (h *VoiceHandler) Synthesize(c *fiber.Ctx) error {
	var req SynthesizeRequest
	if err := decodeStrict(c.Body(), &req); err != nil {
		return err
	}

	resp, err := h.service.Synthesize(c.UserContext(), req.Text, req.LanguageCode)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *VoiceHandler) Languages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"languages": voice.SupportedLanguages()})
}
