package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreaker sheds load on a route group once its handlers keep failing
// with server-side errors. Client errors do not count against the breaker.
func CircuitBreaker(name string, log *zap.Logger) fiber.Handler {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || StatusFor(err) < fiber.StatusInternalServerError
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(c *fiber.Ctx) error {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, c.Next()
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable",
			})
		}

		return err
	}
}
