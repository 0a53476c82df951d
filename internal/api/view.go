package api

import (
	"time"

	"playstock/internal/race"
)

// RaceStateView is the wire shape of the lifecycle document. Timestamps go
// out as epoch milliseconds so clients never deal with timezones.
type RaceStateView struct {
	RaceID       string           `json:"raceId"`
	Phase        race.Phase       `json:"phase"`
	IsOngoing    bool             `json:"isOngoing"`
	RaceFinished bool             `json:"raceFinished"`
	CurrentLap   int              `json:"currentLap"`
	TotalLaps    int              `json:"totalLaps"`
	RaceTime     string           `json:"raceTime"`
	Countdown    string           `json:"countdown"`
	Positions    []race.GridEntry `json:"positions"`
	Results      []race.Result    `json:"results"`
	LastUpdated  int64            `json:"lastUpdated"`
	NextRaceTime int64            `json:"nextRaceTime"`
	SeasonStart  int64            `json:"seasonStart"`
	SeasonEnd    int64            `json:"seasonEnd"`
}

type ScheduledRaceView struct {
	ID            string          `json:"id"`
	Round         int             `json:"round"`
	RaceName      string          `json:"raceName"`
	Circuit       race.Circuit    `json:"circuit"`
	ScheduledTime int64           `json:"scheduledTime"`
	Status        race.RaceStatus `json:"status"`
	Laps          int             `json:"laps"`
	Results       []race.Result   `json:"results,omitempty"`
	Winner        string          `json:"winner,omitempty"`
}

func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func stateView(st race.State, clock race.Clock, now time.Time) RaceStateView {
	view := RaceStateView{
		RaceID:       st.RaceID,
		Phase:        race.DerivePhase(st, clock, now),
		IsOngoing:    st.IsOngoing,
		RaceFinished: st.RaceFinished,
		CurrentLap:   st.CurrentLap,
		TotalLaps:    race.TotalLaps,
		RaceTime:     race.RaceTime(st.CurrentLap),
		Positions:    st.Positions,
		Results:      st.Results,
		LastUpdated:  epochMillis(st.LastUpdated),
		NextRaceTime: epochMillis(st.NextRaceTime),
		SeasonStart:  epochMillis(st.SeasonStart),
		SeasonEnd:    epochMillis(st.SeasonEnd),
	}
	if view.Positions == nil {
		view.Positions = []race.GridEntry{}
	}
	if view.Results == nil {
		view.Results = []race.Result{}
	}
	next := st.NextRaceTime
	if next.IsZero() {
		next = clock.NextRaceStart(now)
	}
	view.Countdown = race.SecondsToClock(int(next.Sub(now) / time.Second))
	return view
}

func emptyStateView(clock race.Clock, now time.Time) RaceStateView {
	st := race.State{
		NextRaceTime: clock.NextRaceStart(now),
		SeasonStart:  clock.SeasonStart,
		SeasonEnd:    clock.SeasonEnd,
		LastUpdated:  now,
	}
	return stateView(st, clock, now)
}

func scheduledRaceView(rec race.ScheduledRace) ScheduledRaceView {
	return ScheduledRaceView{
		ID:            rec.ID,
		Round:         rec.Round,
		RaceName:      rec.RaceName,
		Circuit:       rec.Circuit,
		ScheduledTime: epochMillis(rec.ScheduledTime),
		Status:        rec.Status,
		Laps:          rec.Laps,
		Results:       rec.Results,
		Winner:        rec.Winner,
	}
}

func scheduleView(schedule []race.ScheduledRace) []ScheduledRaceView {
	out := make([]ScheduledRaceView, 0, len(schedule))
	for _, rec := range schedule {
		out = append(out, scheduledRaceView(rec))
	}
	return out
}
