package types

import "time"

// DateLayout is the wire format for calendar-day query parameters.
const DateLayout = "2006-01-02"

// TruncateToDay drops the time-of-day component, keeping the calendar day in UTC.
// All day-bucketing in the aggregation pipeline goes through this so that a
// timestamp and its bucket can never disagree on timezone.
func TruncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from `from` to `to`, floored.
// A `from` later than `to` yields a negative count; callers that treat that as
// a data inconsistency are expected to surface it rather than clamp it here.
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) < 0 {
		days--
	}
	return int(days)
}
