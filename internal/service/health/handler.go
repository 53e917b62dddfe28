package health

import (
	"github.com/gofiber/fiber/v2"
)

// FiberHandler serves the probes used by the deployment: /healthz for
// liveness and /ready for readiness. /health is kept for the sample config
// and local tooling.
type FiberHandler struct {
	service *Service
}

func NewFiberHandler(service *Service) *FiberHandler {
	return &FiberHandler{service: service}
}

func (h *FiberHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/healthz", h.Health)
	router.Get("/ready", h.Ready)
}

// Health never touches the data store or the session cache, so a slow
// snapshot load cannot get the process restarted.
func (h *FiberHandler) Health(c *fiber.Ctx) error {
	return c.JSON(h.service.Health(c.Context()))
}

// Ready answers 503 until the snapshot loads and the session cache answers.
// An open upstream breaker only degrades the report: banking intents keep
// working without Gemini or speech.
func (h *FiberHandler) Ready(c *fiber.Ctx) error {
	report := h.service.Ready(c.Context())
	if !report.Ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}
