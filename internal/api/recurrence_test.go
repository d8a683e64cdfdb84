package api

import (
	"strings"
	"testing"
	"time"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

func TestRecurringDates(t *testing.T) {
	tests := []struct {
		name  string
		start string
		rule  string
		max   int
		want  []string
	}{
		{
			name:  "weekly count",
			start: "2026-05-01",
			rule:  "FREQ=WEEKLY;COUNT=4",
			want:  []string{"2026-05-01", "2026-05-08", "2026-05-15", "2026-05-22"},
		},
		{
			name:  "monthly until",
			start: "2026-01-31",
			rule:  "FREQ=MONTHLY;UNTIL=20260601T000000Z",
			want:  []string{"2026-01-31", "2026-03-31", "2026-05-31"},
		},
		{
			name:  "unbounded rule is capped",
			start: "2026-05-01",
			rule:  "FREQ=DAILY",
			max:   3,
			want:  []string{"2026-05-01", "2026-05-02", "2026-05-03"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RecurringDates(tt.start, tt.rule, time.UTC, tt.max)
			if err != nil {
				t.Fatalf("RecurringDates() error = %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("RecurringDates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecurringDatesErrors(t *testing.T) {
	if _, err := RecurringDates("May 1st", "FREQ=DAILY;COUNT=2", nil, 0); err == nil {
		t.Error("bad start date accepted")
	}
	if _, err := RecurringDates("2026-05-01", "FREQ=SOMETIMES", nil, 0); err == nil {
		t.Error("bad rule accepted")
	}
}

func TestRecurringDatesDefaultCap(t *testing.T) {
	got, err := RecurringDates("2026-01-01", "FREQ=DAILY", nil, 0)
	if err != nil {
		t.Fatalf("RecurringDates() error = %v", err)
	}
	if len(got) != MaxRecurrences {
		t.Errorf("len = %d, want %d", len(got), MaxRecurrences)
	}
}

func TestExportICS(t *testing.T) {
	events := []entities.CalendarEvent{
		{ID: "bk1", Date: "2026-05-02", Title: "Ada Lovelace - Wedding", Kind: entities.CalendarKindBooking,
			BookingID: "bk1", Status: entities.BookingConfirmed, StartTime: "18:00", EndTime: "01:00"},
		{ID: "", Date: "2026-05-03", Kind: entities.CalendarKindBlocked},
		{ID: "bad", Date: "soon", Kind: entities.CalendarKindBooking},
	}
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	out, skipped, err := ExportICS(events, time.UTC, now)
	if err != nil {
		t.Fatalf("ExportICS() error = %v", err)
	}
	if len(skipped) != 1 || skipped[0].ID != "bad" {
		t.Errorf("skipped = %+v, want event bad", skipped)
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("VEVENT count = %d, want 2\n%s", n, out)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:PUBLISH",
		"UID:bk1@eventdesk",
		"SUMMARY:Ada Lovelace - Wedding",
		"DTSTART:20260502T180000Z",
		"DTEND:20260503T010000Z",
		"STATUS:CONFIRMED",
		"UID:blocked-2026-05-03@eventdesk",
		"SUMMARY:Blocked",
		"DTSTART;VALUE=DATE:20260503",
		"DTEND;VALUE=DATE:20260504",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q\n%s", want, out)
		}
	}
}

func TestExportICSBadTime(t *testing.T) {
	events := []entities.CalendarEvent{{ID: "bk1", Date: "2026-05-02", StartTime: "6pm"}}
	if _, _, err := ExportICS(events, nil, time.Now()); err == nil {
		t.Error("ExportICS() accepted an invalid start time")
	}
}

func TestEventTimes(t *testing.T) {
	day := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		start, end string
		timed      bool
		wantEnd    time.Time
	}{
		{"all day", "", "", false, day},
		{"same day", "10:00", "14:30", true, day.Add(14*time.Hour + 30*time.Minute)},
		{"past midnight", "22:00", "02:00", true, day.Add(26 * time.Hour)},
		{"no end", "10:00", "", true, day.Add(11 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, end, timed, err := eventTimes(day, tt.start, tt.end)
			if err != nil {
				t.Fatalf("eventTimes() error = %v", err)
			}
			if timed != tt.timed || !end.Equal(tt.wantEnd) {
				t.Errorf("eventTimes() end = %v timed = %v, want %v %v", end, timed, tt.wantEnd, tt.timed)
			}
		})
	}
}
