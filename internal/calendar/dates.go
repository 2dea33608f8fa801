package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the civil date format accepted and produced by the API.
const DateLayout = "2006-01-02"

// ParseDateString parses a date string in YYYY-MM-DD format. Surrounding
// whitespace is rejected so stored dates compare as plain strings.
// Failures wrap ErrInvalidDate.
func ParseDateString(dateStr string) (time.Time, error) {
	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: use YYYY-MM-DD", ErrInvalidDate, dateStr)
	}
	return date, nil
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// Today returns the civil date of now in loc. A nil loc means UTC.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return civilDay(now.In(loc))
}

// DaysInRange returns every civil day from start to end inclusive.
// It returns nil if end precedes start.
func DaysInRange(start, end time.Time) []time.Time {
	start, end = civilDay(start), civilDay(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
