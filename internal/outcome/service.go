// Package outcome records daily self-reports and manages habit progress,
// restart and cancellation.
package outcome

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitcoach/internal/coach"
	"habitcoach/internal/models"
	"habitcoach/internal/observability"
	"habitcoach/internal/store"
)

var (
	ErrNoHabit          = errors.New("no habit found")
	ErrNoCompletedHabit = errors.New("no completed habit to restart")
	ErrHabitInactive    = errors.New("habit is not active")
)

type Service struct {
	repo       store.Repository
	gen        coach.Generator
	now        func() time.Time
	localDates bool
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocalDates dates logs by the user's offset-shifted day instead of the
// UTC day.
func WithLocalDates(local bool) Option {
	return func(s *Service) { s.localDates = local }
}

func NewService(repo store.Repository, gen coach.Generator, opts ...Option) *Service {
	s := &Service{repo: repo, gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ack is the acknowledgement shown for a recorded status.
func Ack(status models.Status) string {
	switch status {
	case models.StatusDone:
		return "🎉 Great! I've added it to your journal as 'done'."
	case models.StatusPartial:
		return "👌 Good, partially. It's still a result!"
	default:
		return "😕 Sad, hope tomorrow will be better!"
	}
}

func (s *Service) logDate(h *models.Habit) string {
	if s.localDates {
		return models.DateOf(models.ShiftToOffset(s.now(), h.TimezoneOffset))
	}
	return models.DateOf(s.now().UTC())
}

// RecordOutcome stores today's status for the habit. A second report on the
// same day leaves the first one in place and returns the same
// acknowledgement.
func (s *Service) RecordOutcome(ctx context.Context, userID models.UserID, habitID models.HabitID, status models.Status) (string, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID, "habit_id", habitID, "status", status)

	if _, err := models.ParseStatus(string(status)); err != nil {
		return "", err
	}
	habit, err := s.repo.GetHabit(ctx, habitID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && habit.UserID != userID) {
		return "", ErrNoHabit
	}
	if err != nil {
		return "", fmt.Errorf("load habit: %w", err)
	}
	// A completed habit keeps its final tally; late taps would push it past the challenge length.
	if !habit.IsActive {
		return "", ErrHabitInactive
	}

	inserted, err := s.repo.InsertLog(ctx, models.HabitLog{
		UserID:  userID,
		HabitID: habitID,
		Date:    s.logDate(habit),
		Status:  status,
	})
	if err != nil {
		log.Error("failed to record outcome", "error", err)
		return "", fmt.Errorf("insert log: %w", err)
	}
	log.Info("outcome recorded", "inserted", inserted)
	return Ack(status), nil
}

// CurrentHabit is the user's most recently created habit.
func (s *Service) CurrentHabit(ctx context.Context, userID models.UserID) (*models.Habit, error) {
	habits, err := s.repo.GetHabitsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return nil, ErrNoHabit
	}
	h := habits[len(habits)-1]
	return &h, nil
}

// Tally aggregates the logs of one habit.
func (s *Service) Tally(ctx context.Context, h *models.Habit) (models.Tally, error) {
	statuses, err := s.repo.GetLogs(ctx, h.UserID, h.ID)
	if err != nil {
		return models.Tally{}, err
	}
	return models.NewTally(statuses), nil
}

type Summary struct {
	Habit models.Habit `json:"habit"`
	Tally models.Tally `json:"tally"`
	Day   int          `json:"day"`
}

func (s Summary) Text() string {
	return fmt.Sprintf("📊 %s\n📅 Day %d/%d\n✅ Done: %d\n⚠️ Partial: %d\n❌ Missed: %d",
		s.Habit.Name, s.Day, models.ChallengeDays, s.Tally.Done, s.Tally.Partial, s.Tally.Missed)
}

func (s *Service) ProgressSummary(ctx context.Context, userID models.UserID) (*Summary, error) {
	h, err := s.CurrentHabit(ctx, userID)
	if err != nil {
		return nil, err
	}
	tally, err := s.Tally(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}
	return &Summary{Habit: *h, Tally: tally, Day: tally.CompletedDays()}, nil
}

// Restart clears the logs of the user's most recent inactive habit and
// reactivates it with its original definition.
func (s *Service) Restart(ctx context.Context, userID models.UserID) (*models.Habit, error) {
	habits, err := s.repo.GetHabitsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := len(habits) - 1; i >= 0; i-- {
		h := habits[i]
		if h.IsActive {
			continue
		}
		if err := s.repo.ResetHabit(ctx, h.ID, userID); err != nil {
			return nil, fmt.Errorf("reset habit: %w", err)
		}
		h.IsActive = true
		observability.LoggerFromContext(ctx).Info("habit restarted", "user_id", userID, "habit_id", h.ID)
		return &h, nil
	}
	return nil, ErrNoCompletedHabit
}

// Cancel wipes every habit and log of the user.
func (s *Service) Cancel(ctx context.Context, userID models.UserID) error {
	if err := s.repo.DeleteHabitsByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete habits: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("habits cancelled", "user_id", userID)
	return nil
}

func (s *Service) habitContext(ctx context.Context, userID models.UserID) (coach.HabitContext, error) {
	h, err := s.CurrentHabit(ctx, userID)
	if err != nil {
		return coach.HabitContext{}, err
	}
	tally, err := s.Tally(ctx, h)
	if err != nil {
		return coach.HabitContext{}, fmt.Errorf("load logs: %w", err)
	}
	return coach.HabitContext{Name: h.Name, Description: h.Description, Goal: h.Goal, Tally: tally}, nil
}

// Motivation asks the generator for a motivational message. Generator
// failures come back as degraded text, not as an error.
func (s *Service) Motivation(ctx context.Context, userID models.UserID) (string, error) {
	hc, err := s.habitContext(ctx, userID)
	if err != nil {
		return "", err
	}
	text, err := s.gen.Motivation(ctx, hc)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("motivation generation failed", "user_id", userID, "error", err)
		return DegradedText, nil
	}
	return "🔥 " + text, nil
}

// Advice answers a user question about their current habit.
func (s *Service) Advice(ctx context.Context, userID models.UserID, question string) (string, error) {
	hc, err := s.habitContext(ctx, userID)
	if err != nil {
		return "", err
	}
	text, err := s.gen.Advice(ctx, hc, question)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("advice generation failed", "user_id", userID, "error", err)
		return DegradedText, nil
	}
	return text, nil
}

// DegradedText replaces generator output when the generator fails.
const DegradedText = "⚠️ AI error: I couldn't come up with an answer right now. Please try again later."
