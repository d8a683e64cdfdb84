package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

const (
	calendarPath = "/api/calendar"
	blockedPath  = "/api/calendar/blocked"
)

// CalendarService reads the booking calendar and manages blocked dates
type CalendarService struct {
	c *client.Client
}

// Events returns the bookings and blocked dates between from and to
// (YYYY-MM-DD, inclusive). Either bound may be empty.
func (s *CalendarService) Events(ctx context.Context, from, to string) ([]entities.CalendarEvent, error) {
	r := DateRange{From: from, To: to}
	return client.Get[[]entities.CalendarEvent](ctx, s.c, calendarPath, r.apply(nil))
}

// BlockDate marks date as unavailable
func (s *CalendarService) BlockDate(ctx context.Context, date, reason string) (*entities.BlockedDate, error) {
	if _, err := timeutil.ParseDate(date, time.UTC); err != nil {
		return nil, err
	}
	body := entities.BlockedDate{Date: date, Reason: reason}
	return mutate[*entities.BlockedDate](ctx, s.c, http.MethodPost, blockedPath, body)
}

// UnblockDate makes date bookable again
func (s *CalendarService) UnblockDate(ctx context.Context, date string) error {
	if _, err := timeutil.ParseDate(date, time.UTC); err != nil {
		return err
	}
	_, err := mutate[*Deleted](ctx, s.c, http.MethodDelete, resourcePath(blockedPath, date), nil)
	return err
}

// Day is the set of calendar events falling on one date
type Day struct {
	Date   time.Time
	Events []entities.CalendarEvent
}

// Key returns the day as YYYY-MM-DD
func (d Day) Key() string {
	return d.Date.Format(timeutil.DateLayout)
}

// GroupByDate buckets events by their date, evaluated in loc. Days are
// returned in ascending order and events within a day are sorted by start
// time, with blocked entries first. Events with an unparseable date are
// returned separately.
func GroupByDate(events []entities.CalendarEvent, loc *time.Location) (days []Day, invalid []entities.CalendarEvent) {
	if loc == nil {
		loc = time.UTC
	}

	byKey := make(map[string]*Day)
	for _, ev := range events {
		t, err := timeutil.ParseDate(ev.Date, loc)
		if err != nil {
			invalid = append(invalid, ev)
			continue
		}
		key := ev.Date
		d, ok := byKey[key]
		if !ok {
			d = &Day{Date: t}
			byKey[key] = d
		}
		d.Events = append(d.Events, ev)
	}

	days = make([]Day, 0, len(byKey))
	for _, d := range byKey {
		sort.SliceStable(d.Events, func(i, j int) bool {
			a, b := d.Events[i], d.Events[j]
			if (a.Kind == entities.CalendarKindBlocked) != (b.Kind == entities.CalendarKindBlocked) {
				return a.Kind == entities.CalendarKindBlocked
			}
			return a.StartTime < b.StartTime
		})
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, invalid
}

// MonthRange returns the date range of the month containing t in loc
func MonthRange(t time.Time, loc *time.Location) DateRange {
	from, to := timeutil.MonthRange(t, loc)
	return DateRange{From: from, To: to}
}
