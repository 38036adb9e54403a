package api

import (
	"github.com/gofiber/fiber/v2"

	"habitcoach/internal/auth"
	"habitcoach/internal/dispatch"
	"habitcoach/internal/outcome"
	"habitcoach/internal/store"
)

// Deps are the services behind the HTTP surface.
type Deps struct {
	Dispatcher     *dispatch.Dispatcher
	Outcomes       *outcome.Service
	Subscriptions  store.SubscriptionStore
	Signer         *auth.ActionSigner
	VAPIDPublicKey string
}

func SetupRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	// Public: the token is the credential.
	api.Post("/actions/:token", ActionHandler(deps.Signer, deps.Outcomes))
	api.Get("/push/vapid-public-key", VapidPublicKeyHandler(deps.VAPIDPublicKey))

	// The event body may carry the user id itself.
	api.Post("/events", EventsHandler(deps.Dispatcher))
	api.Get("/users/:userId/progress", ProgressHandler(deps.Outcomes))

	// Registered after the public vapid key route so that one stays open.
	push := api.Group("/push", UserMiddleware())
	push.Post("/subscribe", SubscribePushHandler(deps.Subscriptions))
	push.Delete("/unsubscribe", UnsubscribePushHandler(deps.Subscriptions))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
