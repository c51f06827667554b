package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader propagates the request id across service boundaries.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the context key holding the request id.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request carries a request id. An incoming
// X-Request-ID is preserved; otherwise a new UUID is generated. The id is
// stored in context locals for the logger and error responses, and echoed
// back on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
