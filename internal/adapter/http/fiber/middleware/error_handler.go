package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// StatusFor maps an error from the service layer to an HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrCustomerAmbiguous):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)

		if code >= fiber.StatusInternalServerError {
			log.Error("Request failed",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.Int("status", code),
			)
		}

		message := err.Error()
		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
