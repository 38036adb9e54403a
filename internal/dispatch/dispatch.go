// Package dispatch classifies inbound user events and routes them to the
// setup dialog, the outcome engine, the AI chat mode or the menu commands.
package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"habitcoach/internal/dialog"
	"habitcoach/internal/models"
	"habitcoach/internal/observability"
	"habitcoach/internal/outcome"
)

const (
	CommandStart = "/start"

	ActionCancelHabit   = "cancel_habit"
	ActionConfirmCancel = "confirm_cancel_habit"
	ActionKeepHabit     = "cancel_cancel_habit"
)

const (
	noHabitText = "❌ You don't have an active habit."
	helpText    = "🤔 I didn't get that. Use the menu below."
)

type Dispatcher struct {
	dialog   *dialog.Engine
	sessions *dialog.Sessions
	outcomes *outcome.Service
}

func New(engine *dialog.Engine, outcomes *outcome.Service) *Dispatcher {
	return &Dispatcher{dialog: engine, sessions: engine.Sessions(), outcomes: outcomes}
}

func startPrompt(text string) models.Prompt {
	return models.Prompt{
		Text:    text,
		Actions: []models.Action{{Label: "🚀 Start your habit journey", Data: dialog.ActionStartHabit}},
	}
}

func mainMenu(text string) models.Prompt {
	return models.Prompt{Text: text, Menu: models.MainMenu}
}

// Dispatch handles one event and returns the prompts to show the user.
// Errors are repository failures; everything the user can get wrong is
// answered with a prompt.
func (d *Dispatcher) Dispatch(ctx context.Context, ev models.Event) ([]models.Prompt, error) {
	if observability.RequestID(ctx) == "" {
		ctx = observability.WithRequestID(ctx, uuid.NewString())
	}
	log := observability.LoggerFromContext(ctx).With("user_id", ev.UserID, "kind", ev.Kind)
	payload := strings.TrimSpace(ev.Payload)
	isText := ev.Kind != models.EventButton

	prompts, route, err := d.route(ctx, ev, payload, isText)
	if err != nil {
		log.Error("event failed", "route", route, "error", err)
		return nil, err
	}
	log.Info("event handled", "route", route, "prompts", len(prompts))
	return prompts, nil
}

func (d *Dispatcher) route(ctx context.Context, ev models.Event, payload string, isText bool) ([]models.Prompt, string, error) {
	userID := ev.UserID
	sess, hasSession := d.sessions.Get(userID)

	// Reminder buttons are answered from any state and leave the session as is.
	if !isText {
		if status, habitID, ok := models.ParseOutcomeAction(payload); ok {
			prompts, err := d.recordOutcome(ctx, userID, habitID, status)
			return prompts, "outcome", err
		}
	}

	switch {
	case isText && payload == CommandStart:
		d.sessions.Delete(userID)
		return []models.Prompt{startPrompt("👋 Welcome to 21Day, your personal habit coach.\nReady to build a new habit?")}, "start", nil

	case !isText && payload == dialog.ActionStartHabit:
		return d.dialog.Begin(userID), "start_habit", nil

	case (isText && payload == models.MenuCancel) || (!isText && payload == ActionCancelHabit):
		return d.requestCancel(userID, sess, hasSession), "cancel_request", nil

	case hasSession && sess.State == dialog.StateConfirmCancel && !(isText && readOnlyMenu(payload)):
		prompts, err := d.resolveCancel(ctx, sess, isText, payload)
		return prompts, "cancel_confirm", err
	}

	if hasSession {
		switch {
		case sess.State.Onboarding():
			prompts, err := d.dialog.Handle(ctx, ev)
			return prompts, "dialog", err
		case sess.State == dialog.StateAIChat && isText:
			prompts, err := d.chat(ctx, userID, payload)
			return prompts, "ai_chat", err
		}
	}

	if isText {
		if prompts, ok, err := d.menu(ctx, userID, payload); ok {
			return prompts, "menu", err
		}
	}
	return []models.Prompt{mainMenu(helpText)}, "fallback", nil
}

func (d *Dispatcher) requestCancel(userID models.UserID, sess dialog.Session, hasSession bool) []models.Prompt {
	next := dialog.Session{UserID: userID, State: dialog.StateConfirmCancel}
	if hasSession {
		next.Draft = sess.Draft
		next.Prev = sess.State
		if sess.State == dialog.StateConfirmCancel {
			next.Prev = sess.Prev
		}
	}
	d.sessions.Put(next)
	return []models.Prompt{{
		Text: "Are you sure you want to cancel your habit?",
		Actions: []models.Action{
			{Label: "✅ Yes", Data: ActionConfirmCancel},
			{Label: "❌ No", Data: ActionKeepHabit},
		},
	}}
}

func (d *Dispatcher) resolveCancel(ctx context.Context, sess dialog.Session, isText bool, payload string) ([]models.Prompt, error) {
	switch {
	case !isText && payload == ActionConfirmCancel:
		if err := d.outcomes.Cancel(ctx, sess.UserID); err != nil {
			return nil, err
		}
		d.sessions.Delete(sess.UserID)
		return []models.Prompt{
			{Text: "Your habit has been canceled."},
			{Text: "Have a good day!"},
			startPrompt("Want to start a new journey?"),
		}, nil

	case !isText && payload == ActionKeepHabit:
		prompts := []models.Prompt{{Text: "Habit not cancelled."}}
		switch {
		case sess.Prev.Onboarding():
			sess.State = sess.Prev
			sess.Prev = ""
			d.sessions.Put(sess)
			return append(prompts, d.dialog.Resume(sess.UserID)...), nil
		case sess.Prev == dialog.StateAIChat:
			d.sessions.Put(dialog.Session{UserID: sess.UserID, State: dialog.StateAIChat})
			return append(prompts, models.Prompt{Text: "🧠 Back to your questions.", Menu: models.ChatMenu}), nil
		}
		d.sessions.Delete(sess.UserID)
		return append(prompts, mainMenu("keep up your habit and don't give up!")), nil
	}
	return d.requestCancel(sess.UserID, sess, true), nil
}

func (d *Dispatcher) recordOutcome(ctx context.Context, userID models.UserID, habitID models.HabitID, status models.Status) ([]models.Prompt, error) {
	ack, err := d.outcomes.RecordOutcome(ctx, userID, habitID, status)
	switch {
	case errors.Is(err, outcome.ErrNoHabit):
		return []models.Prompt{{Text: "⚠️ This habit no longer exists."}}, nil
	case errors.Is(err, outcome.ErrHabitInactive):
		return []models.Prompt{{Text: "⚠️ This habit is already finished."}}, nil
	case err != nil:
		return nil, err
	}
	return []models.Prompt{{Text: ack}}, nil
}

func (d *Dispatcher) chat(ctx context.Context, userID models.UserID, question string) ([]models.Prompt, error) {
	if question == models.MenuBack {
		d.sessions.Delete(userID)
		return []models.Prompt{mainMenu("📋 Back to main menu.")}, nil
	}
	answer, err := d.outcomes.Advice(ctx, userID, question)
	if errors.Is(err, outcome.ErrNoHabit) {
		d.sessions.Delete(userID)
		return []models.Prompt{{Text: noHabitText}}, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.Prompt{{Text: answer, Menu: models.ChatMenu}}, nil
}

// readOnlyMenu reports menu commands that only report on the habit.
func readOnlyMenu(text string) bool {
	return text == models.MenuProgress || text == models.MenuMotivation
}

// menu handles the reply-keyboard commands. ok is false for any other text.
func (d *Dispatcher) menu(ctx context.Context, userID models.UserID, text string) ([]models.Prompt, bool, error) {
	switch text {
	case models.MenuProgress:
		sum, err := d.outcomes.ProgressSummary(ctx, userID)
		if errors.Is(err, outcome.ErrNoHabit) {
			return []models.Prompt{{Text: noHabitText}}, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		return []models.Prompt{{Text: sum.Text()}}, true, nil

	case models.MenuMotivation:
		msg, err := d.outcomes.Motivation(ctx, userID)
		if errors.Is(err, outcome.ErrNoHabit) {
			return []models.Prompt{{Text: noHabitText}}, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		return []models.Prompt{{Text: msg}}, true, nil

	case models.MenuAssistant:
		d.sessions.Put(dialog.Session{UserID: userID, State: dialog.StateAIChat})
		return []models.Prompt{{
			Text: "🧠 Ask your question about your habit. I'll do my best to help you!",
			Menu: models.ChatMenu,
		}}, true, nil

	case models.MenuRestart:
		_, err := d.outcomes.Restart(ctx, userID)
		if errors.Is(err, outcome.ErrNoCompletedHabit) {
			return []models.Prompt{{Text: "⚠️ No completed habit found to restart."}}, true, nil
		}
		if err != nil {
			return nil, true, err
		}
		return []models.Prompt{mainMenu("🔁 Your habit has been restarted! Let's go again! 💪")}, true, nil

	case models.MenuNewHabit:
		prompts := append([]models.Prompt{{Text: "🆕 Let's start a new habit!"}}, d.dialog.Begin(userID)...)
		return prompts, true, nil

	case models.MenuBack:
		d.sessions.Delete(userID)
		return []models.Prompt{mainMenu("📋 Back to main menu.")}, true, nil
	}
	return nil, false, nil
}
