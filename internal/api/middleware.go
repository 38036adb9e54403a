package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"habitcoach/internal/models"
	"habitcoach/internal/observability"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or mints one, echoes
// it on the response and puts it on the request context for logging.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Locals("requestID", id)
		c.SetUserContext(observability.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}

// UserMiddleware trusts the opaque user id supplied by the transport in the
// X-User-ID header.
func UserMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing X-User-ID header")
		}
		c.Locals("userID", models.UserID(userID))
		return c.Next()
	}
}

func userFromLocals(c *fiber.Ctx) models.UserID {
	id, _ := c.Locals("userID").(models.UserID)
	return id
}
