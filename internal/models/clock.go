package models

import "time"

const dateLayout = "2006-01-02"

// ShiftToOffset returns the wall clock seen by a user at a whole-hour UTC
// offset. The result is expressed in UTC so Hour, Minute, Weekday and Format
// read the shifted values.
func ShiftToOffset(now time.Time, offset int) time.Time {
	return now.UTC().Add(time.Duration(offset) * time.Hour)
}

// DateOf formats the calendar day of t, discarding the time of day.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}
