// Package schedule computes the half-open date windows used by the
// game directory listings.
package schedule

import "time"

// DayWindow returns [today 00:00, tomorrow 00:00) in now's location.
func DayWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekWindow returns [Monday 00:00, next Monday 00:00) for the week
// containing now. Weeks start on Monday.
func WeekWindow(now time.Time) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// time.Weekday numbers Sunday as 0.
	offset := (int(now.Weekday()) + 6) % 7
	start := midnight.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
