package api

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

const icalProductID = "-//devilmonastery//eventdesk//EN"

// ExportICS renders calendar events as an iCalendar feed. Bookings with a
// start time become timed events in loc; everything else is all-day.
// Events whose date cannot be parsed are skipped and returned.
func ExportICS(events []entities.CalendarEvent, loc *time.Location, now time.Time) (string, []entities.CalendarEvent, error) {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icalProductID)
	cal.SetXWRCalName("EventDesk")

	var skipped []entities.CalendarEvent
	for _, ev := range events {
		day, err := timeutil.ParseDate(ev.Date, loc)
		if err != nil {
			skipped = append(skipped, ev)
			continue
		}

		vev := cal.AddEvent(eventUID(ev))
		vev.SetDtStampTime(now.UTC())
		vev.SetSummary(eventSummary(ev))

		start, end, timed, err := eventTimes(day, ev.StartTime, ev.EndTime)
		if err != nil {
			return "", nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		if timed {
			vev.SetStartAt(start)
			vev.SetEndAt(end)
		} else {
			vev.SetAllDayStartAt(day)
			vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}

		switch ev.Status {
		case entities.BookingPending:
			vev.SetStatus(ical.ObjectStatusTentative)
		case entities.BookingCancelled:
			vev.SetStatus(ical.ObjectStatusCancelled)
		case entities.BookingConfirmed, entities.BookingCompleted:
			vev.SetStatus(ical.ObjectStatusConfirmed)
		}
		if ev.BookingID != "" {
			vev.SetDescription("Booking " + ev.BookingID)
		}
	}

	return cal.Serialize(), skipped, nil
}

func eventUID(ev entities.CalendarEvent) string {
	id := ev.ID
	if id == "" {
		id = ev.Kind + "-" + ev.Date
	}
	return id + "@eventdesk"
}

func eventSummary(ev entities.CalendarEvent) string {
	if ev.Title != "" {
		return ev.Title
	}
	if ev.Kind == entities.CalendarKindBlocked {
		return "Blocked"
	}
	return "Booking"
}

// eventTimes combines a day with HH:MM start and end times. An end at or
// before the start runs past midnight; a missing end lasts one hour.
func eventTimes(day time.Time, startTime, endTime string) (start, end time.Time, timed bool, err error) {
	if startTime == "" {
		return day, day, false, nil
	}
	start, err = atClock(day, startTime)
	if err != nil {
		return day, day, false, err
	}
	if endTime == "" {
		return start, start.Add(time.Hour), true, nil
	}
	end, err = atClock(day, endTime)
	if err != nil {
		return day, day, false, err
	}
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true, nil
}

func atClock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
