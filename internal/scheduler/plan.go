// Package scheduler decides which habits are due a reminder or have finished
// their run, and delivers the resulting prompts on a fixed tick.
package scheduler

import (
	"fmt"
	"time"

	"habitcoach/internal/models"
	"habitcoach/internal/outcome"
)

// HabitProgress is an active habit together with its aggregated logs.
type HabitProgress struct {
	Habit models.Habit
	Tally models.Tally
}

type Reminder struct {
	Habit  models.Habit
	Day    int
	Prompt models.Prompt
}

type Completion struct {
	Habit models.Habit
	Tally models.Tally
}

// Plan is the outcome of evaluating one tick.
type Plan struct {
	Reminders   []Reminder
	Completions []Completion
}

// LocalTime maps the UTC hour and minute of now onto a whole-hour offset.
func LocalTime(now time.Time, offset int) models.ReminderTime {
	now = now.UTC()
	hour := ((now.Hour()+offset)%24 + 24) % 24
	return models.ReminderTime{Hour: hour, Minute: now.Minute()}
}

// weekdayFor returns the weekday name used to match a habit's days. With
// localWeekday unset the reference UTC day is used for every habit.
func weekdayFor(now time.Time, offset int, localWeekday bool) string {
	if localWeekday {
		return models.ShiftToOffset(now, offset).Weekday().String()
	}
	return now.UTC().Weekday().String()
}

// Evaluate is the side-effect free part of a tick. Completion takes priority:
// a habit with 21 tracked days is never reminded again.
func Evaluate(now time.Time, habits []HabitProgress, localWeekday bool) Plan {
	var plan Plan
	for _, hp := range habits {
		if !hp.Habit.IsActive {
			continue
		}
		if outcome.IsComplete(hp.Tally) {
			plan.Completions = append(plan.Completions, Completion{Habit: hp.Habit, Tally: hp.Tally})
			continue
		}
		if LocalTime(now, hp.Habit.TimezoneOffset) != hp.Habit.ReminderTime {
			continue
		}
		if !hp.Habit.HasDay(weekdayFor(now, hp.Habit.TimezoneOffset, localWeekday)) {
			continue
		}
		day := hp.Tally.CompletedDays() + 1
		plan.Reminders = append(plan.Reminders, Reminder{
			Habit:  hp.Habit,
			Day:    day,
			Prompt: ReminderPrompt(hp.Habit, day),
		})
	}
	return plan
}

// ReminderPrompt is the daily check-in with its three outcome buttons.
func ReminderPrompt(h models.Habit, day int) models.Prompt {
	return models.Prompt{
		Text: fmt.Sprintf("🕘 Day %d/%d\n*%s*\n%s\nHow is it going?", day, models.ChallengeDays, h.Name, h.Goal),
		Actions: []models.Action{
			{Label: "✅ Done", Data: models.OutcomeAction(models.StatusDone, h.ID)},
			{Label: "⚠️ Partially", Data: models.OutcomeAction(models.StatusPartial, h.ID)},
			{Label: "❌ Missed", Data: models.OutcomeAction(models.StatusMissed, h.ID)},
		},
	}
}
