package alert

import "time"

// SessionWindow is the time-of-day filter for the scalp channel: alerts fire
// only on weekdays between OpenHour (inclusive) and CloseHour (exclusive) in
// the configured location.
type SessionWindow struct {
	Location  *time.Location
	OpenHour  int
	CloseHour int
}

// Check reports whether the window is open at the given instant; the second
// return names the reason when it is not.
func (w SessionWindow) Check(now time.Time) (bool, string) {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, "weekend"
	}
	if h := local.Hour(); h < w.OpenHour || h >= w.CloseHour {
		return false, "outside_session_hours"
	}
	return true, ""
}
