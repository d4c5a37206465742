package models

import "time"

// The competition day runs from 17:30 to 11:00 the next morning, matching
// nightlife hours. Before 11:00 local time the window still belongs to the
// night that just ended; from 11:00 onward the upcoming night applies.
//
// The interval is half-open [start, end): a record stamped exactly 11:00
// belongs to the upcoming night, one stamped exactly 17:30 to the night
// starting then.

// CompetitionWindow returns the active competition-day window for the given
// instant, in that instant's location.
func CompetitionWindow(now time.Time) (start, end time.Time) {
	if now.Hour() < 11 {
		yesterday := now.AddDate(0, 0, -1)
		start = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 17, 30, 0, 0, now.Location())
		end = time.Date(now.Year(), now.Month(), now.Day(), 11, 0, 0, 0, now.Location())
		return start, end
	}
	tomorrow := now.AddDate(0, 0, 1)
	start = time.Date(now.Year(), now.Month(), now.Day(), 17, 30, 0, 0, now.Location())
	end = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 11, 0, 0, 0, now.Location())
	return start, end
}

// CompetitionDate is the calendar date a window is recorded under: the date
// the window starts (the evening side).
func CompetitionDate(now time.Time) time.Time {
	start, _ := CompetitionWindow(now)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}

// InCompetitionWindow reports whether t falls inside [start, end).
func InCompetitionWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
