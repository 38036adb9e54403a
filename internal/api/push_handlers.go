package api

import (
	"github.com/gofiber/fiber/v2"

	"habitcoach/internal/models"
	"habitcoach/internal/store"
)

func VapidPublicKeyHandler(publicKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if publicKey == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Push notifications are not configured")
		}
		return c.JSON(fiber.Map{"publicKey": publicKey})
	}
}

func SubscribePushHandler(subs store.SubscriptionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sub models.PushSubscription
		if err := c.BodyParser(&sub); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing subscription fields")
		}
		sub.UserID = userFromLocals(c)

		if err := subs.SaveSubscription(c.UserContext(), sub); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func UnsubscribePushHandler(subs store.SubscriptionStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body models.UnsubscribeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Endpoint == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing endpoint")
		}

		if err := subs.DeleteSubscription(c.UserContext(), userFromLocals(c), body.Endpoint); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
