package race

import (
	"fmt"
	"time"
)

// Clock computes race-day boundaries from wall-clock time and the fixed
// season constants. All methods are pure; the race day is anchored to a
// fixed UTC offset so the window never drifts with the host timezone.
type Clock struct {
	SeasonStart    time.Time
	SeasonEnd      time.Time
	Offset         time.Duration // fixed local offset of the race calendar
	RaceHour       int           // local hour the daily race starts
	RaceDuration   time.Duration
	PostRaceWindow time.Duration
}

// DefaultClock mirrors the reference season: daily 17:00 at UTC+05:30,
// two-hour race window, 30-minute results window.
func DefaultClock() Clock {
	offset := 5*time.Hour + 30*time.Minute
	zone := time.FixedZone("race", int(offset/time.Second))
	return Clock{
		SeasonStart:    time.Date(2026, time.February, 18, 17, 0, 0, 0, zone),
		SeasonEnd:      time.Date(2026, time.March, 15, 19, 0, 0, 0, zone),
		Offset:         offset,
		RaceHour:       17,
		RaceDuration:   2 * time.Hour,
		PostRaceWindow: 30 * time.Minute,
	}
}

func (c Clock) zone() *time.Location {
	return time.FixedZone("race", int(c.Offset/time.Second))
}

// DayStart returns midnight of now's calendar day in the race offset.
func (c Clock) DayStart(now time.Time) time.Time {
	local := now.In(c.zone())
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.zone())
}

// DailyRaceStart returns today's scheduled start instant. Deterministic for
// every timestamp on the same calendar day.
func (c Clock) DailyRaceStart(now time.Time) time.Time {
	return c.DayStart(now).Add(time.Duration(c.RaceHour) * time.Hour)
}

// NextRaceStart returns the next upcoming daily start, never at or before now.
func (c Clock) NextRaceStart(now time.Time) time.Time {
	today := c.DailyRaceStart(now)
	if now.Before(today) {
		return today
	}
	return today.Add(24 * time.Hour)
}

// InRaceWindow reports whether now falls inside today's live window. Season
// bounds win over the daily arithmetic: outside the season there is never a
// window.
func (c Clock) InRaceWindow(now time.Time) bool {
	if now.Before(c.SeasonStart) || now.After(c.SeasonEnd) {
		return false
	}
	start := c.DailyRaceStart(now)
	return !now.Before(start) && now.Before(start.Add(c.RaceDuration))
}

// SeasonOver reports whether the terminal post-season state has been reached.
func (c Clock) SeasonOver(now time.Time) bool {
	return now.After(c.SeasonEnd)
}

// SameRaceDay reports whether two instants share a calendar day in the race
// offset.
func (c Clock) SameRaceDay(a, b time.Time) bool {
	return c.DayStart(a).Equal(c.DayStart(b))
}

// SecondsToClock formats a countdown as HH:MM:SS, clamped at zero.
func SecondsToClock(totalSeconds int) string {
	if totalSeconds <= 0 {
		return "00:00:00"
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
