package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"habitcoach/internal/auth"
	"habitcoach/internal/dispatch"
	"habitcoach/internal/models"
	"habitcoach/internal/outcome"
)

type EventResponse struct {
	Prompts []models.Prompt `json:"prompts"`
}

// EventsHandler feeds one transport event through the dispatcher. The user
// id comes from the body or, when absent there, the X-User-ID header.
func EventsHandler(d *dispatch.Dispatcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ev models.Event
		if err := c.BodyParser(&ev); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if ev.UserID == "" {
			ev.UserID = models.UserID(strings.TrimSpace(c.Get(HeaderUserID)))
		}
		if ev.UserID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
		}
		switch ev.Kind {
		case "":
			ev.Kind = models.EventText
		case models.EventText, models.EventButton:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "kind must be text or button")
		}

		prompts, err := d.Dispatch(c.UserContext(), ev)
		if err != nil {
			return err
		}
		return c.JSON(EventResponse{Prompts: prompts})
	}
}

func ProgressHandler(outcomes *outcome.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := models.UserID(c.Params("userId"))
		sum, err := outcomes.ProgressSummary(c.UserContext(), userID)
		if errors.Is(err, outcome.ErrNoHabit) {
			return fiber.NewError(fiber.StatusNotFound, "No habit found")
		}
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"habit":   sum.Habit,
			"tally":   sum.Tally,
			"day":     sum.Day,
			"of":      models.ChallengeDays,
			"summary": sum.Text(),
		})
	}
}

// ActionHandler records the outcome carried by a signed reminder action.
func ActionHandler(signer *auth.ActionSigner, outcomes *outcome.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if signer == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Reminder actions are not configured")
		}
		claims, err := signer.Validate(c.Params("token"))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired action")
		}

		ack, err := outcomes.RecordOutcome(c.UserContext(), claims.UserID, claims.HabitID, claims.Status)
		switch {
		case errors.Is(err, outcome.ErrNoHabit):
			return fiber.NewError(fiber.StatusNotFound, "Habit not found")
		case errors.Is(err, outcome.ErrHabitInactive):
			return fiber.NewError(fiber.StatusConflict, "Habit is no longer active")
		case err != nil:
			return err
		}
		return c.JSON(fiber.Map{"message": ack, "status": claims.Status})
	}
}
