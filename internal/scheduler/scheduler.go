package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"habitcoach/internal/models"
	"habitcoach/internal/observability"
	"habitcoach/internal/outcome"
	"habitcoach/internal/store"
	"habitcoach/internal/transport"
)

const DefaultInterval = time.Minute

// TickResult counts what one pass did.
type TickResult struct {
	Habits      int `json:"habits"`
	Reminders   int `json:"reminders"`
	Completions int `json:"completions"`
	Failures    int `json:"failures"`
}

type Scheduler struct {
	repo         store.Repository
	sender       transport.Sender
	interval     time.Duration
	localWeekday bool
	now          func() time.Time

	mu          sync.Mutex
	firedMinute int64
	fired       map[models.HabitID]bool
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithInterval sets the tick period. Values above one minute would skip
// reminder minutes and are clamped.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 && d <= time.Minute {
			s.interval = d
		}
	}
}

// WithLocalWeekday matches reminder days against each user's shifted clock.
func WithLocalWeekday(local bool) Option {
	return func(s *Scheduler) { s.localWeekday = local }
}

// WithSendTimeout bounds every delivery.
func WithSendTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.sender = transport.WithTimeout(s.sender, d) }
}

func New(repo store.Repository, sender transport.Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		repo:     repo,
		sender:   sender,
		interval: DefaultInterval,
		now:      time.Now,
		fired:    map[models.HabitID]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs Tick on every interval until ctx is cancelled. It blocks.
func (s *Scheduler) Start(ctx context.Context) {
	log := observability.WithFields("component", "scheduler")
	log.Info("scheduler started", "interval", s.interval.String(), "local_weekday", s.localWeekday)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				log.Error("scheduler tick failed", "error", err)
			}
		}
	}
}

// Tick evaluates every active habit once. Per-habit failures are logged and
// counted; only a failure to list habits aborts the pass.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	now := s.now().UTC()
	log := observability.LoggerFromContext(ctx).With("component", "scheduler", "tick", now.Format("2006-01-02T15:04"))

	habits, err := s.repo.GetAllActiveHabits(ctx)
	if err != nil {
		return TickResult{}, fmt.Errorf("list active habits: %w", err)
	}

	result := TickResult{Habits: len(habits)}
	progress := make([]HabitProgress, 0, len(habits))
	for _, h := range habits {
		statuses, err := s.repo.GetLogs(ctx, h.UserID, h.ID)
		if err != nil {
			log.Error("failed to load logs", "habit_id", h.ID, "error", err)
			result.Failures++
			continue
		}
		progress = append(progress, HabitProgress{Habit: h, Tally: models.NewTally(statuses)})
	}

	plan := Evaluate(now, progress, s.localWeekday)

	for _, c := range plan.Completions {
		changed, err := s.repo.Deactivate(ctx, c.Habit.ID)
		if err != nil {
			log.Error("failed to deactivate habit", "habit_id", c.Habit.ID, "error", err)
			result.Failures++
			continue
		}
		if !changed {
			continue
		}
		result.Completions++
		log.Info("habit completed", "habit_id", c.Habit.ID, "user_id", c.Habit.UserID, "done", c.Tally.Done, "tier", outcome.TierFor(c.Tally.Done))
		for _, p := range outcome.CompletionPrompts(c.Tally) {
			if err := s.sender.SendPrompt(ctx, c.Habit.UserID, p); err != nil {
				log.Warn("failed to deliver completion", "user_id", c.Habit.UserID, "error", err)
				result.Failures++
				break
			}
		}
	}

	for _, r := range plan.Reminders {
		if !s.claim(now, r.Habit.ID) {
			continue
		}
		if err := s.sender.SendPrompt(ctx, r.Habit.UserID, r.Prompt); err != nil {
			log.Warn("failed to send reminder", "user_id", r.Habit.UserID, "habit_id", r.Habit.ID, "error", err)
			result.Failures++
			continue
		}
		result.Reminders++
	}

	log.Info("scheduler tick", "habits", result.Habits, "reminders", result.Reminders,
		"completions", result.Completions, "failures", result.Failures)
	return result, nil
}

// claim marks a habit as reminded for the minute of now. It returns false if
// the habit was already claimed in that minute.
func (s *Scheduler) claim(now time.Time, id models.HabitID) bool {
	minute := now.Unix() / 60
	s.mu.Lock()
	defer s.mu.Unlock()
	if minute != s.firedMinute {
		s.firedMinute = minute
		s.fired = map[models.HabitID]bool{}
	}
	if s.fired[id] {
		return false
	}
	s.fired[id] = true
	return true
}
