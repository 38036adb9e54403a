package models

import "time"

// ChallengeDays is the length of one habit run.
const ChallengeDays = 21

type HabitID string

type UserID string

type Category string

const (
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryFitness  Category = "fitness"
	CategorySleep    Category = "sleep"
	CategoryCustom   Category = "custom"
)

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategoryHealth,
	CategoryLearning,
	CategoryFitness,
	CategorySleep,
	CategoryCustom,
}

type Status string

const (
	StatusDone    Status = "done"
	StatusPartial Status = "partial"
	StatusMissed  Status = "missed"
)

type Habit struct {
	ID             HabitID      `json:"id"`
	UserID         UserID       `json:"user_id"`
	Category       Category     `json:"category"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Goal           string       `json:"goal"`
	Days           []string     `json:"days"`
	TimezoneOffset int          `json:"timezone_offset"`
	ReminderTime   ReminderTime `json:"reminder_time"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
}

// HasDay reports whether the habit is scheduled on the named weekday.
func (h Habit) HasDay(day string) bool {
	for _, d := range h.Days {
		if d == day {
			return true
		}
	}
	return false
}

type HabitLog struct {
	UserID  UserID  `json:"user_id"`
	HabitID HabitID `json:"habit_id"`
	Date    string  `json:"date"` // YYYY-MM-DD
	Status  Status  `json:"status"`
}

// Tally aggregates the log statuses of one habit.
type Tally struct {
	Done    int `json:"done"`
	Partial int `json:"partial"`
	Missed  int `json:"missed"`
}

func NewTally(statuses []Status) Tally {
	var t Tally
	for _, s := range statuses {
		switch s {
		case StatusDone:
			t.Done++
		case StatusPartial:
			t.Partial++
		case StatusMissed:
			t.Missed++
		}
	}
	return t
}

func (t Tally) CompletedDays() int {
	return t.Done + t.Partial + t.Missed
}

// Action is a tappable button attached to a prompt.
type Action struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Prompt is one outbound message. Actions are inline buttons, Menu is a
// persistent reply keyboard. Alert marks a transient notice that should not
// replace the current view.
type Prompt struct {
	Text    string   `json:"text"`
	Actions []Action `json:"actions,omitempty"`
	Menu    []string `json:"menu,omitempty"`
	Alert   bool     `json:"alert,omitempty"`
}

type PushSubscription struct {
	UserID   UserID `json:"user_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

type EventKind string

const (
	EventText   EventKind = "text"
	EventButton EventKind = "button"
)

// Event is a normalized inbound user action.
type Event struct {
	UserID  UserID    `json:"user_id"`
	Kind    EventKind `json:"kind"`
	Payload string    `json:"payload"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}
