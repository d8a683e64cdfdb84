package api

import (
	"testing"
	"time"

	"github.com/devilmonastery/eventdesk/internal/domain/entities"
)

func TestGroupByDate(t *testing.T) {
	events := []entities.CalendarEvent{
		{ID: "b2", Date: "2026-05-02", Kind: entities.CalendarKindBooking, StartTime: "18:00"},
		{ID: "b1", Date: "2026-05-01", Kind: entities.CalendarKindBooking, StartTime: "10:00"},
		{ID: "x", Date: "someday", Kind: entities.CalendarKindBooking},
		{ID: "b3", Date: "2026-05-02", Kind: entities.CalendarKindBooking, StartTime: "09:00"},
		{ID: "k", Date: "2026-05-02", Kind: entities.CalendarKindBlocked},
	}
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	days, invalid := GroupByDate(events, loc)

	if len(invalid) != 1 || invalid[0].ID != "x" {
		t.Errorf("invalid = %+v, want event x", invalid)
	}
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	if days[0].Key() != "2026-05-01" || days[1].Key() != "2026-05-02" {
		t.Errorf("day keys = %s, %s", days[0].Key(), days[1].Key())
	}
	if days[1].Date.Location() != loc {
		t.Errorf("day location = %v, want %v", days[1].Date.Location(), loc)
	}

	var order []string
	for _, ev := range days[1].Events {
		order = append(order, ev.ID)
	}
	want := []string{"k", "b3", "b2"}
	for i := range want {
		if i >= len(order) || order[i] != want[i] {
			t.Fatalf("events on 2026-05-02 = %v, want %v", order, want)
		}
	}
}

func TestGroupByDateEmpty(t *testing.T) {
	days, invalid := GroupByDate(nil, nil)
	if len(days) != 0 || len(invalid) != 0 {
		t.Errorf("GroupByDate(nil) = %v, %v", days, invalid)
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want DateRange
	}{
		{"mid month", time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC), DateRange{From: "2026-02-01", To: "2026-02-28"}},
		{"leap february", time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), DateRange{From: "2028-02-01", To: "2028-02-29"}},
		{"december", time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), DateRange{From: "2026-12-01", To: "2026-12-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthRange(tt.t, time.UTC); got != tt.want {
				t.Errorf("MonthRange() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResourcePathEscapesID(t *testing.T) {
	if got := resourcePath("/api/bookings", "a/b", "status"); got != "/api/bookings/a%2Fb/status" {
		t.Errorf("resourcePath() = %q", got)
	}
}
