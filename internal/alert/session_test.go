package alert

import (
	"testing"
	"time"
)

func TestSessionWindowCheck(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	window := SessionWindow{Location: loc, OpenHour: 6, CloseHour: 13}

	at := func(value string) time.Time {
		ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		return ts
	}

	cases := []struct {
		name   string
		now    time.Time
		open   bool
		reason string
	}{
		{"mid-session weekday", at("2026-08-26 09:30"), true, ""},
		{"open boundary inclusive", at("2026-08-26 06:00"), true, ""},
		{"close boundary exclusive", at("2026-08-26 13:00"), false, "outside_session_hours"},
		{"pre-market", at("2026-08-26 05:59"), false, "outside_session_hours"},
		{"saturday", at("2026-08-29 09:30"), false, "weekend"},
		{"sunday", at("2026-08-30 09:30"), false, "weekend"},
	}
	for _, tc := range cases {
		open, reason := window.Check(tc.now)
		if open != tc.open || reason != tc.reason {
			t.Fatalf("%s: Check = (%v, %q), want (%v, %q)", tc.name, open, reason, tc.open, tc.reason)
		}
	}
}

func TestSessionWindowWeekendBeatsHours(t *testing.T) {
	loc := time.UTC
	window := SessionWindow{Location: loc, OpenHour: 6, CloseHour: 13}
	// Saturday outside hours still reports the weekend.
	saturday := time.Date(2026, 8, 29, 3, 0, 0, 0, loc)
	if open, reason := window.Check(saturday); open || reason != "weekend" {
		t.Fatalf("Check = (%v, %q), want (false, weekend)", open, reason)
	}
}
