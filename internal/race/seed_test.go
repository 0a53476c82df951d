package race

import "testing"

func TestSeedDrivers(t *testing.T) {
	drivers := SeedDrivers()
	if len(drivers) != GridSize {
		t.Fatalf("seed size got=%d want=%d", len(drivers), GridSize)
	}
	ids := make(map[string]bool, len(drivers))
	ranks := make(map[int]bool, len(drivers))
	for _, d := range drivers {
		if ids[d.ID] {
			t.Fatalf("duplicate driver id %s", d.ID)
		}
		ids[d.ID] = true
		if ranks[d.Rank] {
			t.Fatalf("duplicate rank %d", d.Rank)
		}
		ranks[d.Rank] = true
		if d.Price != d.BasePrice {
			t.Fatalf("driver %s price %d != base %d", d.ID, d.Price, d.BasePrice)
		}
		if d.Price < MinDriverPrice {
			t.Fatalf("driver %s seeded below price floor", d.ID)
		}
		a := d.Attributes
		for _, v := range []int{a.Speed, a.Experience, a.Aggression, a.Consistency, a.Fanbase} {
			if v < 0 || v > 100 {
				t.Fatalf("driver %s attribute out of range: %d", d.ID, v)
			}
		}
	}
}

func TestSeedSchedule(t *testing.T) {
	clock := DefaultClock()
	schedule := SeedSchedule(clock)
	if len(schedule) == 0 {
		t.Fatalf("empty seed schedule")
	}
	for i, rec := range schedule {
		if rec.Round != i+1 {
			t.Fatalf("record %d round got=%d", i, rec.Round)
		}
		if rec.Status != StatusUpcoming {
			t.Fatalf("record %s status got=%s", rec.ID, rec.Status)
		}
		if rec.Laps <= 0 {
			t.Fatalf("record %s has no laps", rec.ID)
		}
		if i > 0 && !schedule[i-1].ScheduledTime.Before(rec.ScheduledTime) {
			t.Fatalf("schedule not chronological at %d", i)
		}
		local := rec.ScheduledTime.In(raceZone())
		if local.Hour() != clock.RaceHour {
			t.Fatalf("record %s not at race hour: %v", rec.ID, local)
		}
	}
	if schedule[0].ScheduledTime.Before(clock.SeasonStart) {
		t.Fatalf("first race before season start")
	}
}
