package timeutil

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		want     string
	}{
		{name: "empty falls back to UTC", timezone: "", want: "UTC"},
		{name: "invalid falls back to UTC", timezone: "Mars/Olympus", want: "UTC"},
		{name: "valid zone", timezone: "America/New_York", want: "America/New_York"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoadLocation(tt.timezone).String(); got != tt.want {
				t.Errorf("LoadLocation(%q) = %v, want %v", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	if IsValidTimezone("") {
		t.Error("empty timezone reported valid")
	}
	if IsValidTimezone("Not/AZone") {
		t.Error("unknown timezone reported valid")
	}
	if !IsValidTimezone("Europe/Berlin") {
		t.Error("Europe/Berlin reported invalid")
	}
}

func TestTodayUsesLocation(t *testing.T) {
	// 02:00 UTC is still the previous evening in New York.
	now := time.Date(2026, 5, 2, 2, 0, 0, 0, time.UTC)
	ny := LoadLocation("America/New_York")

	if got := Today(now, time.UTC); got != "2026-05-02" {
		t.Errorf("Today(UTC) = %s", got)
	}
	if got := Today(now, ny); got != "2026-05-01" {
		t.Errorf("Today(NY) = %s", got)
	}
}

func TestParseDate(t *testing.T) {
	loc := LoadLocation("Europe/Berlin")
	got, err := ParseDate("2026-05-01", loc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Location() != loc || got.Hour() != 0 || got.Day() != 1 {
		t.Errorf("ParseDate = %v", got)
	}
	if _, err := ParseDate("05/01/2026", loc); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		wantFrom string
		wantTo   string
	}{
		{"february leap year", time.Date(2028, 2, 10, 12, 0, 0, 0, time.UTC), "2028-02-01", "2028-02-29"},
		{"december", time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), "2026-12-01", "2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := MonthRange(tt.t, time.UTC)
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("MonthRange = %s..%s, want %s..%s", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestMonthOfAndInRange(t *testing.T) {
	if got := MonthOf("2026-05-17"); got != "2026-05" {
		t.Errorf("MonthOf = %q", got)
	}
	if got := MonthOf("garbage"); got != "" {
		t.Errorf("MonthOf(garbage) = %q", got)
	}

	tests := []struct {
		date, from, to string
		want           bool
	}{
		{"2026-05-01", "", "", true},
		{"2026-05-01", "2026-05-01", "2026-05-31", true},
		{"2026-04-30", "2026-05-01", "", false},
		{"2026-06-01", "", "2026-05-31", false},
	}
	for _, tt := range tests {
		if got := InRange(tt.date, tt.from, tt.to); got != tt.want {
			t.Errorf("InRange(%s, %s, %s) = %v, want %v", tt.date, tt.from, tt.to, got, tt.want)
		}
	}
}
