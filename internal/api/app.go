package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"habitcoach/internal/observability"
)

// ErrorHandler renders every error as {"error": message}. Non-fiber errors
// are logged and reported as 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		observability.LoggerFromContext(c.UserContext()).Error("request failed",
			"method", c.Method(), "path", c.Path(), "error", err)
		if fe == nil {
			err = fiber.ErrInternalServerError
		}
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(deps Deps, allowedOrigins string, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(RequestIDMiddleware())
	if accessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestID} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, " + HeaderUserID + ", " + HeaderRequestID,
	}))

	SetupRoutes(app, deps)
	return app
}
