package dialog

import (
	"sync"
	"time"

	"habitcoach/internal/models"
)

type State string

const (
	StateChooseCategory   State = "choose_category"
	StateEnterName        State = "enter_name"
	StateEnterDescription State = "enter_description"
	StateSetGoal          State = "set_goal"
	StateSelectDays       State = "select_days"
	StateSelectTimezone   State = "select_timezone"
	StateSelectTime       State = "select_time"
	StateConfirm          State = "confirm"
	StateConfirmCancel    State = "confirm_cancel"
	StateAIChat           State = "ai_chat"
)

// Onboarding reports whether s is one of the habit setup steps.
func (s State) Onboarding() bool {
	switch s {
	case StateChooseCategory, StateEnterName, StateEnterDescription, StateSetGoal,
		StateSelectDays, StateSelectTimezone, StateSelectTime, StateConfirm:
		return true
	}
	return false
}

// Draft holds the fields collected so far. Nil pointers and empty strings
// mean "not entered yet"; a zero timezone offset is a real value.
type Draft struct {
	Category     *models.Category     `json:"category,omitempty"`
	Name         string               `json:"name,omitempty"`
	Description  string               `json:"description,omitempty"`
	Goal         string               `json:"goal,omitempty"`
	Days         []string             `json:"days,omitempty"`
	Timezone     *int                 `json:"timezone,omitempty"`
	ReminderTime *models.ReminderTime `json:"reminder_time,omitempty"`
}

// Missing returns the step of the first field not yet entered, in the
// nominal forward order. ok is false when every field is present.
func (d Draft) Missing() (State, bool) {
	switch {
	case d.Category == nil:
		return StateChooseCategory, true
	case d.Name == "":
		return StateEnterName, true
	case d.Description == "":
		return StateEnterDescription, true
	case d.Goal == "":
		return StateSetGoal, true
	case len(d.Days) == 0:
		return StateSelectDays, true
	case d.Timezone == nil:
		return StateSelectTimezone, true
	case d.ReminderTime == nil:
		return StateSelectTime, true
	}
	return "", false
}

func (d Draft) Complete() bool {
	_, missing := d.Missing()
	return !missing
}

// Habit converts a complete draft into a habit definition.
func (d Draft) Habit(userID models.UserID) models.Habit {
	return models.Habit{
		UserID:         userID,
		Category:       *d.Category,
		Name:           d.Name,
		Description:    d.Description,
		Goal:           d.Goal,
		Days:           models.SortDays(d.Days),
		TimezoneOffset: *d.Timezone,
		ReminderTime:   *d.ReminderTime,
		IsActive:       true,
	}
}

func (d Draft) clone() Draft {
	d.Days = append([]string(nil), d.Days...)
	if d.Category != nil {
		c := *d.Category
		d.Category = &c
	}
	if d.Timezone != nil {
		tz := *d.Timezone
		d.Timezone = &tz
	}
	if d.ReminderTime != nil {
		rt := *d.ReminderTime
		d.ReminderTime = &rt
	}
	return d
}

// Session is the transient per-user dialog context.
type Session struct {
	UserID models.UserID `json:"user_id"`
	State  State         `json:"state"`
	Draft  Draft         `json:"draft"`
	// Prev is the state to return to when a cancel request is declined.
	Prev      State     `json:"prev,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Session) clone() Session {
	s.Draft = s.Draft.clone()
	return s
}

// Sessions keeps dialog sessions in memory. Entries idle for longer than the
// TTL are dropped on access or by Sweep.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[models.UserID]Session
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[models.UserID]Session),
	}
}

func (s *Sessions) expired(sess Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl
}

// Get returns a copy of the user's session.
func (s *Sessions) Get(userID models.UserID) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	if s.expired(sess, s.now()) {
		delete(s.sessions, userID)
		return Session{}, false
	}
	return sess.clone(), true
}

func (s *Sessions) Put(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = s.now()
	s.sessions[sess.UserID] = sess.clone()
}

func (s *Sessions) Delete(userID models.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
