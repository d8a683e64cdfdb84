package api

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

// MaxRecurrences caps how many dates a single rule may expand to
const MaxRecurrences = 366

// RecurringDates expands an RRULE (for example "FREQ=WEEKLY;COUNT=4")
// starting on start (YYYY-MM-DD) into dates in loc. The start date is the
// first occurrence when it matches the rule. Expansion stops after max
// dates; max <= 0 means MaxRecurrences.
func RecurringDates(start, rule string, loc *time.Location, max int) ([]string, error) {
	if loc == nil {
		loc = time.UTC
	}
	if max <= 0 || max > MaxRecurrences {
		max = MaxRecurrences
	}

	dtstart, err := timeutil.ParseDate(start, loc)
	if err != nil {
		return nil, err
	}
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	r.DTStart(dtstart)

	next := r.Iterator()
	dates := make([]string, 0)
	for len(dates) < max {
		t, ok := next()
		if !ok {
			break
		}
		dates = append(dates, t.In(loc).Format(timeutil.DateLayout))
	}
	return dates, nil
}
