package race

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memStore is the in-memory Store used by lifecycle tests.
type memStore struct {
	hasState bool
	st       State
	drivers  []Driver
	schedule []ScheduledRace

	saveStateErr error
	saveCount    int
}

func newMemStore(drivers []Driver, schedule []ScheduledRace) *memStore {
	return &memStore{drivers: drivers, schedule: schedule}
}

func (m *memStore) State(_ context.Context) (State, error) {
	if !m.hasState {
		return State{}, ErrNoState
	}
	return m.st, nil
}

func (m *memStore) SaveState(_ context.Context, st State) error {
	if m.saveStateErr != nil {
		return m.saveStateErr
	}
	m.st = st
	m.hasState = true
	m.saveCount++
	return nil
}

func (m *memStore) Drivers(_ context.Context) ([]Driver, error) {
	out := make([]Driver, len(m.drivers))
	copy(out, m.drivers)
	return out, nil
}

func (m *memStore) UpdateDrivers(_ context.Context, updates []DriverUpdate) error {
	var errs []error
	for _, u := range updates {
		found := false
		for i := range m.drivers {
			if m.drivers[i].ID != u.DriverID {
				continue
			}
			m.drivers[i].Price = u.Price
			m.drivers[i].ChangePercent = u.ChangePercent
			m.drivers[i].LastRacePosition = u.LastRacePosition
			m.drivers[i].Points += u.PointsDelta
			m.drivers[i].LastUpdated = u.LastUpdated
			found = true
			break
		}
		if !found {
			errs = append(errs, ErrDriverNotFound)
		}
	}
	return errors.Join(errs...)
}

func (m *memStore) Schedule(_ context.Context) ([]ScheduledRace, error) {
	out := make([]ScheduledRace, len(m.schedule))
	copy(out, m.schedule)
	return out, nil
}

func (m *memStore) UpdateScheduledRace(_ context.Context, rec ScheduledRace) error {
	for i := range m.schedule {
		if m.schedule[i].ID == rec.ID {
			m.schedule[i] = rec
			return nil
		}
	}
	return ErrRaceNotFound
}

func testController(store Store) *Controller {
	rng := NewRand(77)
	sim := NewSimulator(DefaultSimConfig(), rng)
	return NewController(store, DefaultClock(), sim, rng, nil)
}

func raceDay(hour, minute int) time.Time {
	return time.Date(2026, 2, 20, hour, minute, 0, 0, raceZone())
}

func todaysRecord(at time.Time) ScheduledRace {
	return ScheduledRace{
		ID:            "race_3",
		Round:         3,
		RaceName:      "Race Three",
		ScheduledTime: at,
		Status:        StatusUpcoming,
		Laps:          TotalLaps,
	}
}

func TestPollInitializesState(t *testing.T) {
	store := newMemStore(SeedDrivers(), nil)
	ctrl := testController(store)

	now := raceDay(10, 0)
	if err := ctrl.Poll(context.Background(), now); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if !store.hasState {
		t.Fatalf("state not initialized")
	}
	if store.st.IsOngoing || store.st.RaceFinished {
		t.Fatalf("fresh state should be idle: %+v", store.st)
	}
	if !store.st.NextRaceTime.After(now) {
		t.Fatalf("next race time %v not in the future", store.st.NextRaceTime)
	}
}

func TestFullRaceLifecycle(t *testing.T) {
	start := raceDay(17, 0)
	store := newMemStore(SeedDrivers(), []ScheduledRace{todaysRecord(start)})
	ctrl := testController(store)
	ctx := context.Background()

	basePriceByID := make(map[string]int64)
	for _, d := range store.drivers {
		basePriceByID[d.ID] = d.Price
	}

	now := raceDay(17, 1)
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("init poll: %v", err)
	}
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("start poll: %v", err)
	}
	if !store.st.IsOngoing {
		t.Fatalf("race did not start inside window")
	}
	if store.st.CurrentLap != 1 || len(store.st.Positions) != GridSize {
		t.Fatalf("bad starting state: lap=%d grid=%d", store.st.CurrentLap, len(store.st.Positions))
	}
	raceID := store.st.RaceID
	if raceID == "" {
		t.Fatalf("race id not assigned")
	}

	for i := 0; i < TotalLaps+5; i++ {
		now = now.Add(5 * time.Second)
		if err := ctrl.AdvanceLap(ctx, now); err != nil {
			t.Fatalf("lap %d: %v", i, err)
		}
		if store.st.RaceFinished {
			break
		}
	}

	if !store.st.RaceFinished || store.st.IsOngoing {
		t.Fatalf("race did not settle: %+v", store.st)
	}
	if store.st.CurrentLap != TotalLaps {
		t.Fatalf("settled at lap %d want %d", store.st.CurrentLap, TotalLaps)
	}
	if len(store.st.Results) != GridSize {
		t.Fatalf("results size got=%d want=%d", len(store.st.Results), GridSize)
	}

	// Settlement wrote prices and points back to the market.
	winner := store.st.Results[0]
	for _, d := range store.drivers {
		if d.ID != winner.DriverID {
			continue
		}
		if d.Price != SettledPrice(basePriceByID[d.ID], 15) {
			t.Fatalf("winner price got=%d", d.Price)
		}
		if d.LastRacePosition != 1 {
			t.Fatalf("winner last position got=%d", d.LastRacePosition)
		}
	}

	// Today's calendar record is completed with the same results.
	if store.schedule[0].Status != StatusCompleted {
		t.Fatalf("schedule record status got=%s", store.schedule[0].Status)
	}
	if store.schedule[0].Winner != winner.DriverName {
		t.Fatalf("schedule winner got=%q want=%q", store.schedule[0].Winner, winner.DriverName)
	}

	// Further laps and polls inside the window must not reopen or re-settle.
	settledResults := store.st.Results
	if err := ctrl.AdvanceLap(ctx, now.Add(5*time.Second)); err != nil {
		t.Fatalf("post-settlement lap: %v", err)
	}
	if err := ctrl.Poll(ctx, now.Add(10*time.Second)); err != nil {
		t.Fatalf("post-settlement poll: %v", err)
	}
	if !store.st.RaceFinished || store.st.IsOngoing {
		t.Fatalf("settled race reopened")
	}
	if len(store.st.Results) != len(settledResults) || store.st.Results[0].DriverID != settledResults[0].DriverID {
		t.Fatalf("results changed after settlement")
	}
}

func TestPollFinalizesWhenWindowCloses(t *testing.T) {
	store := newMemStore(SeedDrivers(), nil)
	ctrl := testController(store)
	ctx := context.Background()

	now := raceDay(18, 0)
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("init poll: %v", err)
	}
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("start poll: %v", err)
	}
	if !store.st.IsOngoing {
		t.Fatalf("race did not start")
	}

	// Window closes with the race mid-distance; the poll settles it.
	if err := ctrl.Poll(ctx, raceDay(19, 1)); err != nil {
		t.Fatalf("closing poll: %v", err)
	}
	if !store.st.RaceFinished || store.st.IsOngoing {
		t.Fatalf("race not settled at window close: %+v", store.st)
	}
	if len(store.st.Results) != GridSize {
		t.Fatalf("results size got=%d", len(store.st.Results))
	}
}

func TestStaleFinishedStateCleared(t *testing.T) {
	store := newMemStore(SeedDrivers(), nil)
	ctrl := testController(store)
	ctx := context.Background()

	yesterday := raceDay(19, 10).Add(-24 * time.Hour)
	store.hasState = true
	store.st = State{
		RaceFinished: true,
		Results:      []Result{{DriverID: "max_verstappen", Position: 1}},
		LastUpdated:  yesterday,
	}

	if err := ctrl.Poll(ctx, raceDay(10, 0)); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if store.st.RaceFinished {
		t.Fatalf("previous day's finished flag not cleared")
	}
}

func TestScheduleLiveOverrideRestartsFinishedRace(t *testing.T) {
	rec := todaysRecord(raceDay(17, 0))
	rec.Status = StatusLive
	store := newMemStore(SeedDrivers(), []ScheduledRace{rec})
	ctrl := testController(store)
	ctx := context.Background()

	store.hasState = true
	store.st = State{
		RaceFinished: true,
		Results:      []Result{{DriverID: "max_verstappen", Position: 1}},
		LastUpdated:  raceDay(9, 0),
	}

	now := raceDay(10, 0) // outside the daily window
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("override poll: %v", err)
	}
	if err := ctrl.Poll(ctx, now.Add(2*time.Second)); err != nil {
		t.Fatalf("start poll: %v", err)
	}
	if !store.st.IsOngoing {
		t.Fatalf("live override did not start a race")
	}
	if len(store.st.Results) != 0 {
		t.Fatalf("old results carried into new race")
	}
}

func TestSelfHealOngoingWithoutGrid(t *testing.T) {
	store := newMemStore(SeedDrivers(), nil)
	ctrl := testController(store)
	ctx := context.Background()

	store.hasState = true
	store.st = State{
		IsOngoing:   true,
		CurrentLap:  12,
		LastUpdated: raceDay(17, 5),
	}

	now := raceDay(17, 10)
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("heal poll: %v", err)
	}
	if err := ctrl.Poll(ctx, now.Add(2*time.Second)); err != nil {
		t.Fatalf("start poll: %v", err)
	}
	if !store.st.IsOngoing || len(store.st.Positions) != GridSize {
		t.Fatalf("corrupt state not rebuilt: ongoing=%v grid=%d", store.st.IsOngoing, len(store.st.Positions))
	}
	if store.st.CurrentLap != 1 {
		t.Fatalf("rebuilt race lap got=%d want=1", store.st.CurrentLap)
	}
}

func TestSweepSettlesMissedRaces(t *testing.T) {
	missed := ScheduledRace{
		ID:            "race_1",
		Round:         1,
		RaceName:      "Race One",
		ScheduledTime: raceDay(17, 0).Add(-48 * time.Hour),
		Status:        StatusUpcoming,
		Laps:          TotalLaps,
	}
	store := newMemStore(SeedDrivers(), []ScheduledRace{missed})
	ctrl := testController(store)
	ctx := context.Background()

	now := raceDay(10, 0)
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("init poll: %v", err)
	}
	if err := ctrl.Poll(ctx, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("sweep poll: %v", err)
	}

	rec := store.schedule[0]
	if rec.Status != StatusCompleted {
		t.Fatalf("missed race status got=%s", rec.Status)
	}
	if len(rec.Results) != GridSize {
		t.Fatalf("missed race results got=%d", len(rec.Results))
	}
	if rec.Winner == "" {
		t.Fatalf("missed race has no winner")
	}
}

func TestSweepLeavesTodaysRaceAlone(t *testing.T) {
	rec := todaysRecord(raceDay(17, 0))
	store := newMemStore(SeedDrivers(), []ScheduledRace{rec})
	ctrl := testController(store)
	ctx := context.Background()

	now := raceDay(10, 0)
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("init poll: %v", err)
	}
	if err := ctrl.Poll(ctx, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("sweep poll: %v", err)
	}
	if store.schedule[0].Status != StatusUpcoming {
		t.Fatalf("today's record touched by sweep: %s", store.schedule[0].Status)
	}
}

func TestDerivePhase(t *testing.T) {
	clock := DefaultClock()
	tests := []struct {
		name string
		st   State
		now  time.Time
		want Phase
	}{
		{"idle morning", State{}, raceDay(10, 0), PhaseBefore},
		{"ongoing", State{IsOngoing: true}, raceDay(10, 0), PhaseLive},
		{"finished", State{RaceFinished: true}, raceDay(19, 30), PhaseFinished},
		{"window without doc", State{}, raceDay(17, 30), PhaseLive},
		{"past season", State{IsOngoing: true}, raceDay(17, 30).AddDate(0, 2, 0), PhaseAfter},
	}
	for _, tc := range tests {
		if got := DerivePhase(tc.st, clock, tc.now); got != tc.want {
			t.Fatalf("%s: got=%s want=%s", tc.name, got, tc.want)
		}
	}
}

func TestStartRaceRevertsGuardOnSaveFailure(t *testing.T) {
	store := newMemStore(SeedDrivers(), nil)
	ctrl := testController(store)
	ctx := context.Background()

	now := raceDay(17, 30)
	if err := ctrl.Poll(ctx, now); err != nil {
		t.Fatalf("init poll: %v", err)
	}

	store.saveStateErr = errors.New("connection reset")
	if err := ctrl.Poll(ctx, now.Add(2*time.Second)); err == nil {
		t.Fatalf("expected start failure")
	}

	store.saveStateErr = nil
	if err := ctrl.Poll(ctx, now.Add(4*time.Second)); err != nil {
		t.Fatalf("retry poll: %v", err)
	}
	if !store.st.IsOngoing {
		t.Fatalf("race did not start after transient save failure")
	}
}
