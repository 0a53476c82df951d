package race

import (
	"fmt"
	"sort"
)

// SimConfig carries the lap-simulation tunables. The defaults are the
// reference constants; none of them have a documented derivation, so they
// stay configuration rather than code.
type SimConfig struct {
	TotalLaps      int
	GridSize       int
	PitWindowOpen  int     // pits allowed on laps strictly after this
	PitWindowClose int     // and strictly before this
	PitProbability float64 // per entry per lap
	SwapStrongProb float64 // trailing car is the stronger one
	SwapWeakProb   float64 // trailing car is the weaker one
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		TotalLaps:      TotalLaps,
		GridSize:       GridSize,
		PitWindowOpen:  15,
		PitWindowClose: 45,
		PitProbability: 0.03,
		SwapStrongProb: 0.55,
		SwapWeakProb:   0.25,
	}
}

// Simulator advances a live grid lap by lap. It never settles a race; it
// only reports completion so the lifecycle controller can.
type Simulator struct {
	cfg SimConfig
	rng *Rand
}

func NewSimulator(cfg SimConfig, rng *Rand) *Simulator {
	if cfg.TotalLaps <= 0 {
		cfg = DefaultSimConfig()
	}
	if rng == nil {
		rng = NewRand(0)
	}
	return &Simulator{cfg: cfg, rng: rng}
}

// BuildGrid forms the starting order from the drivers' static ranks, capped
// at the grid size, with baseline telemetry.
func (s *Simulator) BuildGrid(drivers []Driver) []GridEntry {
	sorted := make([]Driver, len(drivers))
	copy(sorted, drivers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankOr99(sorted[i].Rank) < rankOr99(sorted[j].Rank)
	})
	if len(sorted) > s.cfg.GridSize {
		sorted = sorted[:s.cfg.GridSize]
	}

	grid := make([]GridEntry, 0, len(sorted))
	for i, d := range sorted {
		e := GridEntry{
			DriverID:  d.ID,
			Name:      d.Name,
			Team:      d.Team,
			TeamColor: d.TeamColor,
			Photo:     d.Photo,
			Price:     d.Price,
			Rank:      d.Rank,
			Points:    d.Points,
			Position:  i + 1,
			Gap:       startingGap(i),
		}
		s.baselineTelemetry(&e)
		grid = append(grid, e)
	}
	return grid
}

func rankOr99(rank int) int {
	if rank <= 0 {
		return 99
	}
	return rank
}

func startingGap(index int) string {
	if index == 0 {
		return "Leader"
	}
	return fmt.Sprintf("+%.3fs", float64(index)*2.3)
}

// compositeStrength blends points with a rank bonus; the overtake pass
// compares it between adjacent cars.
func compositeStrength(e GridEntry) int {
	rank := e.Rank
	if rank <= 0 || rank > GridSize {
		rank = GridSize
	}
	return e.Points + (GridSize+1-rank)*2
}

// AdvanceLap runs one lap: overtake pass, pit pass, then telemetry. The
// returned grid is a fresh slice whose positions stay a permutation of 1..N.
// Events describe overtakes and stops for the live ticker. done is true once
// the new lap count reaches the race distance.
func (s *Simulator) AdvanceLap(grid []GridEntry, currentLap int, hist History) (next []GridEntry, lap int, events []string, done bool) {
	lap = currentLap + 1
	next = make([]GridEntry, len(grid))
	copy(next, grid)

	// Overtakes: up to two adjacent-pair attempts. The stronger trailing car
	// gets through more often; equal strength keeps the order.
	attempts := s.rng.Intn(3)
	for k := 0; k < attempts && len(next) >= 2; k++ {
		a := s.rng.Intn(len(next) - 1)
		b := a + 1
		ahead, behind := compositeStrength(next[a]), compositeStrength(next[b])
		prob := s.cfg.SwapWeakProb
		if behind > ahead {
			prob = s.cfg.SwapStrongProb
		}
		if s.rng.Float64() < prob {
			next[a], next[b] = next[b], next[a]
			events = append(events, fmt.Sprintf("%s overtakes %s for P%d", next[a].Name, next[b].Name, a+1))
		}
	}

	// Pit stops: mid-race only. A stop resets tyres and counts against the
	// entry; its position effect arrives through later strength comparisons.
	for i := range next {
		if lap > s.cfg.PitWindowOpen && lap < s.cfg.PitWindowClose && s.rng.Float64() < s.cfg.PitProbability {
			next[i].PitStops++
			next[i].TyreWear = 100
			events = append(events, fmt.Sprintf("%s pits, stop %d", next[i].Name, next[i].PitStops))
		}
	}

	for i := range next {
		s.lapTelemetry(&next[i], i+1, lap, hist)
	}

	return next, lap, events, lap >= s.cfg.TotalLaps
}
