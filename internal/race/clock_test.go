package race

import (
	"testing"
	"time"
)

func raceZone() *time.Location {
	return time.FixedZone("race", 5*3600+30*60)
}

func TestInRaceWindow(t *testing.T) {
	c := DefaultClock()
	zone := raceZone()

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before daily start", time.Date(2026, 2, 20, 16, 59, 59, 0, zone), false},
		{"at daily start", time.Date(2026, 2, 20, 17, 0, 0, 0, zone), true},
		{"mid window", time.Date(2026, 2, 20, 18, 30, 0, 0, zone), true},
		{"at window end", time.Date(2026, 2, 20, 19, 0, 0, 0, zone), false},
		{"before season", time.Date(2026, 2, 10, 17, 30, 0, 0, zone), false},
		{"after season", time.Date(2026, 3, 20, 17, 30, 0, 0, zone), false},
	}
	for _, tc := range tests {
		if got := c.InRaceWindow(tc.now); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestInRaceWindowHostTimezoneIndependent(t *testing.T) {
	c := DefaultClock()
	local := time.Date(2026, 2, 20, 18, 0, 0, 0, raceZone())
	utc := local.UTC()
	if c.InRaceWindow(local) != c.InRaceWindow(utc) {
		t.Fatalf("window result depends on timestamp location")
	}
}

func TestNextRaceStartAlwaysFuture(t *testing.T) {
	c := DefaultClock()
	zone := raceZone()
	instants := []time.Time{
		time.Date(2026, 2, 20, 10, 0, 0, 0, zone),
		time.Date(2026, 2, 20, 17, 0, 0, 0, zone),
		time.Date(2026, 2, 20, 18, 30, 0, 0, zone),
		time.Date(2026, 2, 20, 23, 59, 0, 0, zone),
	}
	for _, now := range instants {
		next := c.NextRaceStart(now)
		if !next.After(now) {
			t.Fatalf("next race %v not after %v", next, now)
		}
		local := next.In(zone)
		if local.Hour() != c.RaceHour || local.Minute() != 0 {
			t.Fatalf("next race start %v not at race hour", local)
		}
	}
}

func TestSeasonOver(t *testing.T) {
	c := DefaultClock()
	zone := raceZone()
	if c.SeasonOver(time.Date(2026, 3, 15, 18, 0, 0, 0, zone)) {
		t.Fatalf("final day should not be over")
	}
	if !c.SeasonOver(time.Date(2026, 3, 15, 19, 0, 1, 0, zone)) {
		t.Fatalf("past season end should be over")
	}
}

func TestSameRaceDay(t *testing.T) {
	c := DefaultClock()
	zone := raceZone()
	a := time.Date(2026, 2, 20, 0, 30, 0, 0, zone)
	b := time.Date(2026, 2, 20, 23, 30, 0, 0, zone)
	if !c.SameRaceDay(a, b) {
		t.Fatalf("same calendar day not detected")
	}
	if c.SameRaceDay(a, b.Add(time.Hour)) {
		t.Fatalf("midnight rollover not detected")
	}
}

func TestSecondsToClock(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "00:00:00"},
		{seconds: -30, want: "00:00:00"},
		{seconds: 61, want: "00:01:01"},
		{seconds: 3661, want: "01:01:01"},
		{seconds: 90000, want: "25:00:00"},
	}
	for _, tc := range tests {
		if got := SecondsToClock(tc.seconds); got != tc.want {
			t.Fatalf("seconds=%d got=%q want=%q", tc.seconds, got, tc.want)
		}
	}
}
