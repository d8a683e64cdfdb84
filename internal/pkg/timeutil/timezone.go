package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// MonthLayout is the wire format for report months (YYYY-MM)
const MonthLayout = "2006-01"

// LoadLocation returns the named location, falling back to UTC when the
// name is empty or unknown.
func LoadLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		// If timezone is invalid, fallback to UTC
		return time.UTC
	}
	return loc
}

// IsValidTimezone checks if a timezone string is valid
func IsValidTimezone(timezone string) bool {
	if timezone == "" {
		return false
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}

// Today returns the date of now in loc
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as the start of that day in loc
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in loc
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// MonthOf returns the YYYY-MM month of a YYYY-MM-DD date, or "" when the
// date is malformed.
func MonthOf(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format(MonthLayout)
}

// MonthRange returns the first and last dates of the month containing t,
// evaluated in loc.
func MonthRange(t time.Time, loc *time.Location) (from, to string) {
	local := t.In(loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first.Format(DateLayout), last.Format(DateLayout)
}

// InRange reports whether date lies within [from, to]. Empty bounds are
// open. Dates compare lexically because the layout is fixed width.
func InRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}
