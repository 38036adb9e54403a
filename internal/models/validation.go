package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyText       = errors.New("value must not be empty")
	ErrInvalidTime     = errors.New("time must be HH:MM in 24-hour format")
	ErrInvalidOffset   = errors.New("timezone offset out of range")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidWeekday  = errors.New("unknown weekday")
	ErrInvalidStatus   = errors.New("unknown status")
	ErrNoDays          = errors.New("at least one day must be selected")
)

const (
	MinTimezoneOffset = -12
	MaxTimezoneOffset = 12
)

// Weekdays is the canonical ordered weekday list, Monday first.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ReminderTime is a local time of day with minute precision.
type ReminderTime struct {
	Hour   int
	Minute int
}

// ParseReminderTime accepts H:MM or HH:MM on a 24-hour clock.
func ParseReminderTime(s string) (ReminderTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ReminderTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return ReminderTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (r ReminderTime) String() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

func (r ReminderTime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ReminderTime) UnmarshalText(b []byte) error {
	parsed, err := ParseReminderTime(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RequireText trims s and rejects the empty result.
func RequireText(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", ErrEmptyText
	}
	return v, nil
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDone, StatusPartial, StatusMissed:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func ValidateOffset(offset int) error {
	if offset < MinTimezoneOffset || offset > MaxTimezoneOffset {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	return nil
}

func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// SortDays returns days in canonical weekday order without duplicates.
func SortDays(days []string) []string {
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	out := make([]string, 0, len(set))
	for _, d := range Weekdays {
		if set[d] {
			out = append(out, d)
		}
	}
	return out
}

// ToggleDay flips membership of day in days and returns the sorted result.
func ToggleDay(days []string, day string) ([]string, error) {
	if !IsWeekday(day) {
		return days, fmt.Errorf("%w: %q", ErrInvalidWeekday, day)
	}
	out := make([]string, 0, len(days)+1)
	found := false
	for _, d := range days {
		if d == day {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, day)
	}
	return SortDays(out), nil
}

// FormatOffset renders an offset as UTC+3, UTC-5, UTC+0.
func FormatOffset(offset int) string {
	return fmt.Sprintf("UTC%+d", offset)
}

// OutcomeAction encodes a reminder response button, e.g. "done:<habit id>".
func OutcomeAction(status Status, habitID HabitID) string {
	return string(status) + ":" + string(habitID)
}

// ParseOutcomeAction decodes a payload built by OutcomeAction.
func ParseOutcomeAction(data string) (Status, HabitID, bool) {
	prefix, id, ok := strings.Cut(data, ":")
	if !ok || id == "" {
		return "", "", false
	}
	status, err := ParseStatus(prefix)
	if err != nil {
		return "", "", false
	}
	return status, HabitID(id), true
}
