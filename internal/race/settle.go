package race

import (
	"fmt"
	"sort"
	"time"
)

// finalScore blends live position, static rank, and accumulated points, with
// a jitter strictly below 2 so skill dominates but reruns differ.
func finalScore(e GridEntry, jitter float64) float64 {
	pos := e.Position
	if pos <= 0 || pos > GridSize {
		pos = GridSize
	}
	rankTerm := 10.0
	if e.Rank > 0 {
		r := e.Rank
		if r > GridSize {
			r = GridSize
		}
		rankTerm = float64(GridSize + 1 - r)
	}
	pointsTerm := float64(e.Points) / 10
	if pointsTerm > 15 {
		pointsTerm = 15
	}
	return float64(GridSize+1-pos)*3 + rankTerm + pointsTerm + jitter
}

// FinalOrder ranks a finished grid by composite score, best first. The sort
// is stable, so exact ties keep their grid order.
func FinalOrder(grid []GridEntry, rng *Rand) []GridEntry {
	type scored struct {
		entry GridEntry
		score float64
	}
	ranked := make([]scored, 0, len(grid))
	for _, e := range grid {
		ranked = append(ranked, scored{entry: e, score: finalScore(e, rng.Float64()*2)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	ordered := make([]GridEntry, 0, len(ranked))
	for _, s := range ranked {
		ordered = append(ordered, s.entry)
	}
	return ordered
}

// BuildResults converts a final order into result rows with points and
// settled prices.
func BuildResults(ordered []GridEntry, rng *Rand) []Result {
	results := make([]Result, 0, len(ordered))
	for i, e := range ordered {
		position := i + 1
		pct := PriceChangeForPosition(position)
		results = append(results, Result{
			DriverID:      e.DriverID,
			DriverName:    e.Name,
			Team:          e.Team,
			TeamColor:     teamColorOrDefault(e.TeamColor),
			Photo:         e.Photo,
			Position:      position,
			Points:        PointsForPosition(position),
			TimeGap:       finishGap(position, rng.Float64()),
			PriceChange:   pct,
			FinalPrice:    SettledPrice(e.Price, pct),
			PreviousPrice: e.Price,
		})
	}
	return results
}

func teamColorOrDefault(c string) string {
	if c == "" {
		return "#E10600"
	}
	return c
}

func finishGap(position int, jitter float64) string {
	if position == 1 {
		return "WINNER"
	}
	return fmt.Sprintf("+%.3fs", float64(position-1)*1.5+jitter)
}

// DriverUpdatesFor maps results to the per-driver writes settlement applies:
// new price, change percent, finishing position, and a points increment.
func DriverUpdatesFor(results []Result, at time.Time) []DriverUpdate {
	updates := make([]DriverUpdate, 0, len(results))
	for _, r := range results {
		updates = append(updates, DriverUpdate{
			DriverID:         r.DriverID,
			Price:            r.FinalPrice,
			ChangePercent:    r.PriceChange,
			LastRacePosition: r.Position,
			PointsDelta:      r.Points,
			LastUpdated:      at,
		})
	}
	return updates
}

// SettleFromBaseline produces results for a race that was never run live:
// the schedule catch-up path. Drivers are scored from price and attributes
// with a ±20% random factor, then a 15% adjacent shuffle keeps it from being
// a pure form chart.
func SettleFromBaseline(drivers []Driver, rng *Rand) []Result {
	if len(drivers) == 0 {
		return nil
	}
	type scored struct {
		d     Driver
		score float64
	}
	ranked := make([]scored, 0, len(drivers))
	for _, d := range drivers {
		base := float64(d.Price)/100 + float64(d.Attributes.Speed) + float64(d.Attributes.Consistency)
		factor := 1 + (rng.Float64()*0.4 - 0.2)
		ranked = append(ranked, scored{d: d, score: base * factor})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	for i := 0; i < len(ranked)-1; i++ {
		if rng.Float64() < 0.15 {
			ranked[i], ranked[i+1] = ranked[i+1], ranked[i]
		}
	}
	if len(ranked) > GridSize {
		ranked = ranked[:GridSize]
	}

	results := make([]Result, 0, len(ranked))
	for i, s := range ranked {
		position := i + 1
		pct := PriceChangeForPosition(position)
		results = append(results, Result{
			DriverID:      s.d.ID,
			DriverName:    s.d.Name,
			Team:          s.d.Team,
			TeamColor:     teamColorOrDefault(s.d.TeamColor),
			Photo:         s.d.Photo,
			Position:      position,
			Points:        PointsForPosition(position),
			TimeGap:       catchupGap(position, rng.Float64()),
			PriceChange:   pct,
			FinalPrice:    SettledPrice(s.d.Price, pct),
			PreviousPrice: s.d.Price,
		})
	}
	return results
}

func catchupGap(position int, jitter float64) string {
	if position == 1 {
		return "WINNER"
	}
	return fmt.Sprintf("+%.3fs", jitter*30+5)
}
