// Package store persists habits, daily logs and push subscriptions.
package store

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"habitcoach/internal/models"
)

var ErrNotFound = errors.New("not found")

// Repository is the habit store consumed by the dialog, outcome and
// scheduler packages.
type Repository interface {
	CreateHabit(ctx context.Context, h *models.Habit) (models.HabitID, error)
	GetHabit(ctx context.Context, id models.HabitID) (*models.Habit, error)
	// GetHabitsByUser returns the user's habits ordered by id, newest last.
	GetHabitsByUser(ctx context.Context, userID models.UserID) ([]models.Habit, error)
	GetAllActiveHabits(ctx context.Context) ([]models.Habit, error)
	SetActive(ctx context.Context, id models.HabitID, active bool) error
	// Deactivate flips an active habit to inactive and reports whether this
	// call made the change.
	Deactivate(ctx context.Context, id models.HabitID) (bool, error)
	// DeleteHabitsByUser removes every habit and log owned by the user.
	DeleteHabitsByUser(ctx context.Context, userID models.UserID) error
	// InsertLog stores the log unless one exists for the same user, habit
	// and date. It reports whether a row was written.
	InsertLog(ctx context.Context, log models.HabitLog) (bool, error)
	GetLogs(ctx context.Context, userID models.UserID, id models.HabitID) ([]models.Status, error)
	DeleteLogs(ctx context.Context, id models.HabitID, userID models.UserID) error
	// ResetHabit clears the habit's logs and reactivates it in one step.
	ResetHabit(ctx context.Context, id models.HabitID, userID models.UserID) error
}

// SubscriptionStore keeps Web Push subscriptions per user.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub models.PushSubscription) error
	DeleteSubscription(ctx context.Context, userID models.UserID, endpoint string) error
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context, userID models.UserID) ([]models.PushSubscription, error)
}

// idSource hands out ULIDs that sort in creation order, including ids minted
// within the same millisecond.
type idSource struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func newIDSource() *idSource {
	return &idSource{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
}

func (s *idSource) next() models.HabitID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.HabitID(ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String())
}
