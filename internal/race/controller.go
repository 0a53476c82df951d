package race

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Controller is the top-level race state machine. Poll drives the lifecycle
// transitions (before -> live -> finished -> before, terminal after past
// season end); AdvanceLap drives the live simulation. Both reconcile against
// the persisted State document each call, so multiple instances converge
// without locks: the document is ground truth and the in-memory started/
// finalized guards only stop one instance from repeating a transition it
// already made.
type Controller struct {
	store Store
	clock Clock
	sim   *Simulator
	rng   *Rand
	log   *slog.Logger

	started   bool
	finalized bool
	lastSweep time.Time
}

func NewController(store Store, clock Clock, sim *Simulator, rng *Rand, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = NewRand(0)
	}
	if sim == nil {
		sim = NewSimulator(DefaultSimConfig(), rng)
	}
	return &Controller{store: store, clock: clock, sim: sim, rng: rng, log: logger}
}

// DerivePhase maps the stored document plus wall clock to the display phase.
// The document wins over clock arithmetic except for season end.
func DerivePhase(st State, clock Clock, now time.Time) Phase {
	switch {
	case clock.SeasonOver(now):
		return PhaseAfter
	case st.IsOngoing:
		return PhaseLive
	case st.RaceFinished:
		return PhaseFinished
	case clock.InRaceWindow(now):
		return PhaseLive
	default:
		return PhaseBefore
	}
}

// Poll evaluates the transition rules once. Callers run it on a fixed
// interval; any persistence failure is returned for logging and retried by
// the next tick.
func (c *Controller) Poll(ctx context.Context, now time.Time) error {
	st, err := c.store.State(ctx)
	if errors.Is(err, ErrNoState) {
		return c.initState(ctx, now)
	}
	if err != nil {
		return fmt.Errorf("load race state: %w", err)
	}

	// Reconcile per-run guards with the stored document: a cleared document
	// means a new race day may start.
	if !st.IsOngoing && !st.RaceFinished {
		c.started, c.finalized = false, false
	}

	schedule, err := c.store.Schedule(ctx)
	if err != nil {
		c.log.Warn("schedule read failed", "err", err)
		schedule = nil
	}
	scheduleLive := false
	for _, rec := range schedule {
		if rec.Status == StatusLive {
			scheduleLive = true
			break
		}
	}

	shouldBeLive := c.clock.InRaceWindow(now) || scheduleLive
	dayEnd := c.clock.DailyRaceStart(now).Add(c.clock.RaceDuration)

	if st.RaceFinished {
		if scheduleLive {
			// Manual override: wipe the finished document so a fresh race can
			// start immediately.
			c.started, c.finalized = false, false
			st.RaceFinished = false
			st.IsOngoing = false
			st.CurrentLap = 0
			st.Positions = nil
			st.Results = nil
			st.Telemetry = nil
			st.LastUpdated = now
			if err := c.store.SaveState(ctx, st); err != nil {
				return fmt.Errorf("clear finished state: %w", err)
			}
		} else {
			// A finished flag from a previous day, or one older than the
			// results window, must not block the next start.
			staleDay := c.clock.DayStart(now).After(c.clock.DayStart(st.LastUpdated))
			if staleDay || !now.Before(dayEnd.Add(c.clock.PostRaceWindow)) {
				c.started, c.finalized = false, false
				st.RaceFinished = false
				st.IsOngoing = false
				st.LastUpdated = now
				if err := c.store.SaveState(ctx, st); err != nil {
					return fmt.Errorf("clear stale finished state: %w", err)
				}
			}
			return c.sweepSchedule(ctx, now, schedule)
		}
	}

	// Self-heal: an ongoing race with no grid is a leftover from a partial
	// failure and cannot be resumed.
	if shouldBeLive && st.IsOngoing && len(st.Positions) == 0 {
		c.started = false
		st.IsOngoing = false
		st.CurrentLap = 0
		st.LastUpdated = now
		if err := c.store.SaveState(ctx, st); err != nil {
			return fmt.Errorf("clear corrupt ongoing state: %w", err)
		}
	}

	switch {
	case shouldBeLive && !st.IsOngoing && !st.RaceFinished:
		if err := c.startRace(ctx, now, st); err != nil {
			return err
		}
	case !shouldBeLive && st.IsOngoing:
		if err := c.Finalize(ctx, now, st); err != nil {
			return err
		}
	case !shouldBeLive && !st.IsOngoing && !st.RaceFinished:
		next := c.nextRaceTime(schedule, now)
		if !st.NextRaceTime.Equal(next) {
			st.NextRaceTime = next
			st.LastUpdated = now
			if err := c.store.SaveState(ctx, st); err != nil {
				return fmt.Errorf("update next race time: %w", err)
			}
		}
	}

	return c.sweepSchedule(ctx, now, schedule)
}

func (c *Controller) initState(ctx context.Context, now time.Time) error {
	st := State{
		NextRaceTime: c.clock.NextRaceStart(now),
		LastUpdated:  now,
		SeasonStart:  c.clock.SeasonStart,
		SeasonEnd:    c.clock.SeasonEnd,
	}
	if err := c.store.SaveState(ctx, st); err != nil {
		return fmt.Errorf("init race state: %w", err)
	}
	c.log.Info("race state initialized", "next_race", st.NextRaceTime)
	return nil
}

func (c *Controller) startRace(ctx context.Context, now time.Time, st State) error {
	if c.started {
		return nil
	}
	drivers, err := c.store.Drivers(ctx)
	if err != nil {
		return fmt.Errorf("load drivers: %w", err)
	}
	if len(drivers) == 0 {
		c.log.Warn("race start skipped: no drivers seeded")
		return nil
	}
	c.started = true
	c.finalized = false

	st.RaceID = uuid.NewString()
	st.IsOngoing = true
	st.RaceFinished = false
	st.CurrentLap = 1
	st.Positions = c.sim.BuildGrid(drivers)
	st.Results = nil
	st.Telemetry = map[string][]TelemetrySample{}
	st.NextRaceTime = c.clock.NextRaceStart(now)
	st.LastUpdated = now
	if err := c.store.SaveState(ctx, st); err != nil {
		c.started = false
		return fmt.Errorf("persist race start: %w", err)
	}
	c.log.Info("race started", "race_id", st.RaceID, "grid", len(st.Positions))
	return nil
}

// AdvanceLap runs one simulated lap against the stored grid. No-op unless a
// race is ongoing. Reaching the race distance finalizes in the same call.
func (c *Controller) AdvanceLap(ctx context.Context, now time.Time) error {
	st, err := c.store.State(ctx)
	if errors.Is(err, ErrNoState) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load race state: %w", err)
	}
	if !st.IsOngoing || len(st.Positions) == 0 {
		return nil
	}

	if st.Telemetry == nil {
		st.Telemetry = map[string][]TelemetrySample{}
	}
	next, lap, events, done := c.sim.AdvanceLap(st.Positions, st.CurrentLap, History(st.Telemetry))
	st.Positions = next
	st.CurrentLap = lap
	st.LastUpdated = now
	for _, ev := range events {
		c.log.Info("race update", "lap", lap, "event", ev)
	}
	if done {
		return c.Finalize(ctx, now, st)
	}
	return c.store.SaveState(ctx, st)
}

// Finalize settles the race exactly once: scores the grid, writes results
// and the finished flags, updates every driver's price and points, and
// completes today's schedule record. Price updates outrank schedule
// bookkeeping: a missing schedule match degrades to a warning.
func (c *Controller) Finalize(ctx context.Context, now time.Time, st State) error {
	if c.finalized || st.RaceFinished {
		return nil
	}
	if len(st.Positions) == 0 {
		return nil
	}
	c.finalized = true

	ordered := FinalOrder(st.Positions, c.rng)
	results := BuildResults(ordered, c.rng)

	st.IsOngoing = false
	st.RaceFinished = true
	st.Results = results
	st.LastUpdated = now
	if err := c.store.SaveState(ctx, st); err != nil {
		c.finalized = false
		return fmt.Errorf("persist settlement: %w", err)
	}

	if err := c.store.UpdateDrivers(ctx, DriverUpdatesFor(results, now)); err != nil {
		c.log.Error("settlement driver updates failed", "err", err)
	}
	if err := c.completeTodaysRecord(ctx, now, results); err != nil {
		c.log.Warn("schedule record not settled", "err", err)
	}

	c.log.Info("race settled", "race_id", st.RaceID, "winner", results[0].DriverName)
	return nil
}

func (c *Controller) completeTodaysRecord(ctx context.Context, now time.Time, results []Result) error {
	schedule, err := c.store.Schedule(ctx)
	if err != nil {
		return fmt.Errorf("schedule read: %w", err)
	}
	todayStart := c.clock.DailyRaceStart(now)
	for _, rec := range schedule {
		offset := rec.ScheduledTime.Sub(todayStart)
		if offset < -time.Hour || offset > time.Hour {
			continue
		}
		rec.Status = StatusCompleted
		rec.Results = results
		rec.Winner = results[0].DriverName
		rec.LastUpdated = now
		return c.store.UpdateScheduledRace(ctx, rec)
	}
	return ErrRaceNotFound
}

func (c *Controller) nextRaceTime(schedule []ScheduledRace, now time.Time) time.Time {
	next := time.Time{}
	for _, rec := range schedule {
		if !rec.ScheduledTime.After(now) {
			continue
		}
		if next.IsZero() || rec.ScheduledTime.Before(next) {
			next = rec.ScheduledTime
		}
	}
	if next.IsZero() {
		return c.clock.NextRaceStart(now)
	}
	return next
}

// sweepSchedule settles races missed entirely (previous days still upcoming,
// or completed with no results) from driver baselines, then keeps the
// newest completed record's result prices aligned with the market. Runs at
// most once a minute.
func (c *Controller) sweepSchedule(ctx context.Context, now time.Time, schedule []ScheduledRace) error {
	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) < time.Minute {
		return nil
	}
	c.lastSweep = now

	today := c.clock.DayStart(now)
	for _, rec := range schedule {
		if !rec.ScheduledTime.Before(today) {
			continue // today's race belongs to the live engine
		}
		if rec.Status == StatusLive {
			continue
		}
		if rec.Status == StatusCompleted && len(rec.Results) > 0 {
			continue
		}
		drivers, err := c.store.Drivers(ctx)
		if err != nil {
			c.log.Warn("catch-up settlement skipped", "race", rec.RaceName, "err", err)
			continue
		}
		results := SettleFromBaseline(drivers, c.rng)
		if len(results) == 0 {
			continue
		}
		rec.Status = StatusCompleted
		rec.Results = results
		rec.Winner = results[0].DriverName
		rec.LastUpdated = now
		if err := c.store.UpdateScheduledRace(ctx, rec); err != nil {
			c.log.Warn("catch-up schedule write failed", "race", rec.RaceName, "err", err)
			continue
		}
		if err := c.store.UpdateDrivers(ctx, DriverUpdatesFor(results, now)); err != nil {
			c.log.Warn("catch-up driver updates failed", "race", rec.RaceName, "err", err)
		}
		c.log.Info("missed race settled", "race", rec.RaceName, "winner", rec.Winner)
	}

	return c.syncLatestRacePrices(ctx, now)
}

// syncLatestRacePrices is cosmetic: the newest completed record shows the
// drivers' current market prices rather than the prices at settlement time.
func (c *Controller) syncLatestRacePrices(ctx context.Context, now time.Time) error {
	schedule, err := c.store.Schedule(ctx)
	if err != nil {
		return nil // transient; next sweep retries
	}
	var latest *ScheduledRace
	for i := range schedule {
		rec := &schedule[i]
		if rec.Status != StatusCompleted || len(rec.Results) == 0 {
			continue
		}
		if latest == nil || rec.LastUpdated.After(latest.LastUpdated) {
			latest = rec
		}
	}
	if latest == nil {
		return nil
	}
	drivers, err := c.store.Drivers(ctx)
	if err != nil {
		return nil
	}
	priceByID := make(map[string]int64, len(drivers))
	for _, d := range drivers {
		priceByID[d.ID] = d.Price
	}
	changed := false
	for i, r := range latest.Results {
		price, ok := priceByID[r.DriverID]
		if !ok || r.FinalPrice == price {
			continue
		}
		latest.Results[i].FinalPrice = price
		changed = true
	}
	if !changed {
		return nil
	}
	latest.LastUpdated = now
	if err := c.store.UpdateScheduledRace(ctx, *latest); err != nil {
		c.log.Warn("price sync failed", "race", latest.RaceName, "err", err)
	}
	return nil
}
