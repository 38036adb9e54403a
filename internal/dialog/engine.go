// Package dialog implements the habit setup conversation: a per-user state
// machine that collects the habit fields, lets the user edit any of them from
// the confirmation screen and persists the habit on confirm.
package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"habitcoach/internal/models"
	"habitcoach/internal/observability"
	"habitcoach/internal/store"
)

type Engine struct {
	repo     store.Repository
	sessions *Sessions
}

func NewEngine(repo store.Repository, sessions *Sessions) *Engine {
	return &Engine{repo: repo, sessions: sessions}
}

func (e *Engine) Sessions() *Sessions {
	return e.sessions
}

// Begin discards any open session and starts a new setup at category choice.
func (e *Engine) Begin(userID models.UserID) []models.Prompt {
	e.sessions.Put(Session{UserID: userID, State: StateChooseCategory})
	return []models.Prompt{categoryPrompt()}
}

// Active reports whether the user is in the middle of habit setup.
func (e *Engine) Active(userID models.UserID) bool {
	sess, ok := e.sessions.Get(userID)
	return ok && sess.State.Onboarding()
}

// Resume repeats the prompt of the user's current setup step.
func (e *Engine) Resume(userID models.UserID) []models.Prompt {
	sess, ok := e.sessions.Get(userID)
	if !ok || !sess.State.Onboarding() {
		return nil
	}
	return reprompt(&sess)
}

// Handle applies one inbound event to the user's setup session. Invalid
// input never fails: the current step is asked again. Errors come only from
// the repository on confirm.
func (e *Engine) Handle(ctx context.Context, ev models.Event) ([]models.Prompt, error) {
	sess, ok := e.sessions.Get(ev.UserID)
	if !ok || !sess.State.Onboarding() {
		return nil, nil
	}
	log := observability.LoggerFromContext(ctx).With("user_id", ev.UserID, "state", sess.State)

	var prompts []models.Prompt
	switch ev.Kind {
	case models.EventButton:
		var err error
		prompts, err = e.handleButton(ctx, &sess, ev.Payload)
		if err != nil {
			log.Error("failed to save habit", "error", err)
			return nil, err
		}
	default:
		prompts = e.handleText(&sess, ev.Payload)
	}

	if sess.State == "" {
		e.sessions.Delete(ev.UserID)
	} else {
		e.sessions.Put(sess)
	}
	log.Debug("dialog step", "next", sess.State)
	return prompts, nil
}

// advance moves to confirmation once every field is present, otherwise to
// the first missing field.
func advance(sess *Session) []models.Prompt {
	next, missing := sess.Draft.Missing()
	if !missing {
		sess.State = StateConfirm
		return []models.Prompt{confirmPrompt(sess.Draft)}
	}
	sess.State = next
	return []models.Prompt{stepPrompt(next, sess.Draft, false)}
}

func reprompt(sess *Session) []models.Prompt {
	return []models.Prompt{stepPrompt(sess.State, sess.Draft, false)}
}

func (e *Engine) handleText(sess *Session, text string) []models.Prompt {
	switch sess.State {
	case StateEnterName, StateEnterDescription, StateSetGoal:
		v, err := models.RequireText(text)
		if err != nil {
			return reprompt(sess)
		}
		switch sess.State {
		case StateEnterName:
			sess.Draft.Name = v
		case StateEnterDescription:
			sess.Draft.Description = v
		default:
			sess.Draft.Goal = v
		}
		return advance(sess)

	case StateSelectTime:
		rt, err := models.ParseReminderTime(text)
		if err != nil {
			return []models.Prompt{{Text: invalidTimeNotice}}
		}
		sess.Draft.ReminderTime = &rt
		return advance(sess)
	}
	// Category, days and timezone are chosen by button only.
	return reprompt(sess)
}

func (e *Engine) handleButton(ctx context.Context, sess *Session, data string) ([]models.Prompt, error) {
	switch {
	case sess.State == StateChooseCategory && strings.HasPrefix(data, prefixCategory):
		c, err := models.ParseCategory(strings.TrimPrefix(data, prefixCategory))
		if err != nil {
			return reprompt(sess), nil
		}
		sess.Draft.Category = &c
		return advance(sess), nil

	case sess.State == StateSelectDays && strings.HasPrefix(data, prefixToggleDay):
		days, err := models.ToggleDay(sess.Draft.Days, strings.TrimPrefix(data, prefixToggleDay))
		if err != nil {
			return reprompt(sess), nil
		}
		sess.Draft.Days = days
		return []models.Prompt{daysPrompt(days)}, nil

	case sess.State == StateSelectDays && data == ActionDaysDone:
		if len(sess.Draft.Days) == 0 {
			return []models.Prompt{{Text: noDaysNotice, Alert: true}}, nil
		}
		return advance(sess), nil

	case sess.State == StateSelectTimezone && strings.HasPrefix(data, prefixTimezone):
		off, err := strconv.Atoi(strings.TrimPrefix(data, prefixTimezone))
		if err != nil || models.ValidateOffset(off) != nil {
			return reprompt(sess), nil
		}
		sess.Draft.Timezone = &off
		return advance(sess), nil

	case sess.State == StateConfirm && strings.HasPrefix(data, prefixEdit):
		target, ok := editTargets[strings.TrimPrefix(data, prefixEdit)]
		if !ok {
			return reprompt(sess), nil
		}
		sess.State = target
		return []models.Prompt{stepPrompt(target, sess.Draft, true)}, nil

	case sess.State == StateConfirm && data == ActionConfirm:
		return e.confirm(ctx, sess)
	}
	return reprompt(sess), nil
}

func (e *Engine) confirm(ctx context.Context, sess *Session) ([]models.Prompt, error) {
	if !sess.Draft.Complete() {
		return advance(sess), nil
	}
	h := sess.Draft.Habit(sess.UserID)
	id, err := e.repo.CreateHabit(ctx, &h)
	if err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("habit created",
		"user_id", sess.UserID, "habit_id", id, "reminder_time", h.ReminderTime.String(), "timezone", h.TimezoneOffset)

	sess.State = ""
	return []models.Prompt{
		{Text: "🎉 Your habit has been successfully created!"},
		{Text: "💬 Here's what you can do next:", Menu: models.MainMenu},
	}, nil
}
