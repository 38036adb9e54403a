package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseReminderTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"07:00", "07:00", false},
		{"7:05", "07:05", false},
		{" 23:59 ", "23:59", false},
		{"00:00", "00:00", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
		{"12:5", "", true},
	}
	for _, tt := range tests {
		got, err := ParseReminderTime(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTime) {
				t.Errorf("ParseReminderTime(%q): expected ErrInvalidTime, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseReminderTime(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseReminderTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToggleDayIsIdempotentPerPair(t *testing.T) {
	days, err := ToggleDay(nil, "Friday")
	if err != nil {
		t.Fatal(err)
	}
	days, _ = ToggleDay(days, "Monday")
	if !reflect.DeepEqual(days, []string{"Monday", "Friday"}) {
		t.Fatalf("unexpected days %v", days)
	}
	days, _ = ToggleDay(days, "Friday")
	if !reflect.DeepEqual(days, []string{"Monday"}) {
		t.Fatalf("expected Friday removed, got %v", days)
	}
	if _, err := ToggleDay(days, "Funday"); !errors.Is(err, ErrInvalidWeekday) {
		t.Fatalf("expected ErrInvalidWeekday, got %v", err)
	}
}

func TestRequireText(t *testing.T) {
	if _, err := RequireText("   \t"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	v, err := RequireText("  read 10 pages ")
	if err != nil || v != "read 10 pages" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestTally(t *testing.T) {
	tally := NewTally([]Status{StatusDone, StatusDone, StatusPartial, StatusMissed, "bogus"})
	if tally.Done != 2 || tally.Partial != 1 || tally.Missed != 1 {
		t.Fatalf("unexpected tally %+v", tally)
	}
	if tally.CompletedDays() != 4 {
		t.Fatalf("expected 4 completed days, got %d", tally.CompletedDays())
	}
}

func TestFormatOffset(t *testing.T) {
	for in, want := range map[int]string{-5: "UTC-5", 0: "UTC+0", 12: "UTC+12"} {
		if got := FormatOffset(in); got != want {
			t.Errorf("FormatOffset(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestOutcomeActionRoundTrip(t *testing.T) {
	data := OutcomeAction(StatusPartial, "01HZX")
	if data != "partial:01HZX" {
		t.Fatalf("unexpected payload %q", data)
	}
	status, id, ok := ParseOutcomeAction(data)
	if !ok || status != StatusPartial || id != "01HZX" {
		t.Fatalf("got %s %s %v", status, id, ok)
	}
	for _, bad := range []string{"done:", "timezone:-5", "done", "toggle_day:Monday"} {
		if _, _, ok := ParseOutcomeAction(bad); ok {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}
