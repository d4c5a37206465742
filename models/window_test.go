package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestCompetitionWindowMorningBelongsToPreviousNight(t *testing.T) {
	now := date(2026, 3, 14, 9, 45)
	start, end := CompetitionWindow(now)

	if !start.Equal(date(2026, 3, 13, 17, 30)) {
		t.Fatalf("start = %v; want 2026-03-13 17:30", start)
	}
	if !end.Equal(date(2026, 3, 14, 11, 0)) {
		t.Fatalf("end = %v; want 2026-03-14 11:00", end)
	}
}

func TestCompetitionWindowAfternoonBelongsToUpcomingNight(t *testing.T) {
	now := date(2026, 3, 14, 14, 0)
	start, end := CompetitionWindow(now)

	if !start.Equal(date(2026, 3, 14, 17, 30)) {
		t.Fatalf("start = %v; want 2026-03-14 17:30", start)
	}
	if !end.Equal(date(2026, 3, 15, 11, 0)) {
		t.Fatalf("end = %v; want 2026-03-15 11:00", end)
	}
}

func TestCompetitionWindowExactlyElevenFlipsToUpcomingNight(t *testing.T) {
	now := date(2026, 3, 14, 11, 0)
	start, end := CompetitionWindow(now)

	if !start.Equal(date(2026, 3, 14, 17, 30)) {
		t.Fatalf("start = %v; want same-day 17:30 at exactly 11:00", start)
	}
	if !end.Equal(date(2026, 3, 15, 11, 0)) {
		t.Fatalf("end = %v; want next-day 11:00", end)
	}
}

func TestCompetitionWindowJustBeforeEleven(t *testing.T) {
	now := date(2026, 3, 14, 10, 59)
	start, _ := CompetitionWindow(now)
	if !start.Equal(date(2026, 3, 13, 17, 30)) {
		t.Fatalf("start = %v; want previous-day 17:30 just before 11:00", start)
	}
}

func TestCompetitionWindowCrossesMonthBoundary(t *testing.T) {
	now := date(2026, 3, 1, 2, 0)
	start, end := CompetitionWindow(now)
	if !start.Equal(date(2026, 2, 28, 17, 30)) {
		t.Fatalf("start = %v; want 2026-02-28 17:30", start)
	}
	if !end.Equal(date(2026, 3, 1, 11, 0)) {
		t.Fatalf("end = %v; want 2026-03-01 11:00", end)
	}
}

func TestCompetitionDateIsTheEveningDate(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{date(2026, 3, 14, 9, 0), date(2026, 3, 13, 0, 0)},
		{date(2026, 3, 14, 12, 0), date(2026, 3, 14, 0, 0)},
		{date(2026, 3, 14, 23, 59), date(2026, 3, 14, 0, 0)},
		{date(2026, 3, 15, 0, 30), date(2026, 3, 14, 0, 0)},
	}
	for _, tc := range cases {
		got := CompetitionDate(tc.now)
		if !got.Equal(tc.want) {
			t.Errorf("CompetitionDate(%v) = %v; want %v", tc.now, got, tc.want)
		}
	}
}

func TestInCompetitionWindowIsHalfOpen(t *testing.T) {
	start := date(2026, 3, 13, 17, 30)
	end := date(2026, 3, 14, 11, 0)

	cases := []struct {
		t    time.Time
		want bool
	}{
		{start, true},
		{start.Add(-time.Second), false},
		{date(2026, 3, 13, 23, 0), true},
		{date(2026, 3, 14, 10, 59), true},
		{end, false},
		{end.Add(time.Second), false},
	}
	for _, tc := range cases {
		if got := InCompetitionWindow(tc.t, start, end); got != tc.want {
			t.Errorf("InCompetitionWindow(%v) = %v; want %v", tc.t, got, tc.want)
		}
	}
}
