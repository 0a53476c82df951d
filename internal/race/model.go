package race

import (
	"errors"
	"fmt"
	"time"
)

const (
	// TotalLaps is the lap count every simulated race runs to, regardless of
	// the circuit's advertised distance.
	TotalLaps = 57

	// GridSize caps how many drivers start a race.
	GridSize = 20

	// MaxTelemetryHistory bounds the per-driver sample ring used for charting.
	MaxTelemetryHistory = 30

	// MinDriverPrice is the hard floor a settled price can never go below.
	MinDriverPrice = int64(100)
)

var (
	ErrNoState        = errors.New("race state not initialized")
	ErrDriverNotFound = errors.New("driver not found")
	ErrRaceNotFound   = errors.New("scheduled race not found")
)

// pointsByPosition pays the classic 25-18-15 scale; positions past 10th score zero.
var pointsByPosition = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// priceChangeByPosition maps a final position to the percentage applied to the
// driver's share price at settlement.
var priceChangeByPosition = map[int]float64{
	1: 15, 2: 10, 3: 8, 4: 6, 5: 4, 6: 3, 7: 2, 8: 1, 9: 0.5, 10: 0,
	11: -1, 12: -2, 13: -2, 14: -3, 15: -3, 16: -4, 17: -4, 18: -5, 19: -5, 20: -6,
}

func PointsForPosition(position int) int {
	if position < 1 || position > len(pointsByPosition) {
		return 0
	}
	return pointsByPosition[position-1]
}

func PriceChangeForPosition(position int) float64 {
	if pct, ok := priceChangeByPosition[position]; ok {
		return pct
	}
	return -5
}

// SettledPrice applies a settlement percentage to a price, rounding to whole
// currency units and enforcing the floor.
func SettledPrice(previous int64, changePct float64) int64 {
	next := int64(float64(previous)*(1+changePct/100) + 0.5)
	if next < MinDriverPrice {
		return MinDriverPrice
	}
	return next
}

type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// DriverAttributes are the static skill numbers the settlement scoring and
// catch-up simulation read. 0-100 scale.
type DriverAttributes struct {
	Speed       int `json:"speed"`
	Experience  int `json:"experience"`
	Aggression  int `json:"aggression"`
	Consistency int `json:"consistency"`
	Fanbase     int `json:"fanbase"`
}

// Driver is the persistent competitor record. Price and points are mutated
// only by settlement.
type Driver struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Number           int              `json:"driverNumber"`
	Team             string           `json:"team"`
	TeamColor        string           `json:"teamColor"`
	Photo            string           `json:"photo"`
	Nationality      string           `json:"nationality"`
	BasePrice        int64            `json:"basePrice"`
	Price            int64            `json:"price"`
	ChangePercent    float64          `json:"changePercent"`
	Points           int              `json:"points"`
	Rank             int              `json:"rank"`
	LastRacePosition int              `json:"lastRacePosition"`
	Risk             RiskTier         `json:"risk"`
	Attributes       DriverAttributes `json:"attributes"`
	LastUpdated      time.Time        `json:"lastUpdated"`
}

// TelemetrySample is one lap's worth of synthetic car data.
type TelemetrySample struct {
	Lap          int     `json:"lap"`
	Speed        float64 `json:"speed"`
	RPM          float64 `json:"rpm"`
	Throttle     float64 `json:"throttle"`
	Brake        float64 `json:"brake"`
	Gear         int     `json:"gear"`
	TyreTemp     float64 `json:"tyreTemp"`
	EngineTemp   float64 `json:"engineTemp"`
	Fuel         float64 `json:"fuel"`
	Acceleration float64 `json:"acceleration"`
}

// GridEntry is a driver's ephemeral slot in a live race. Positions across a
// grid always form a permutation of 1..N.
type GridEntry struct {
	DriverID     string  `json:"id"`
	Name         string  `json:"name"`
	Team         string  `json:"team"`
	TeamColor    string  `json:"teamColor"`
	Photo        string  `json:"photo"`
	Price        int64   `json:"price"`
	Rank         int     `json:"rank"`
	Points       int     `json:"points"`
	Position     int     `json:"position"`
	Gap          string  `json:"gap"`
	PitStops     int     `json:"pitstops"`
	Speed        float64 `json:"speed"`
	RPM          float64 `json:"rpm"`
	Throttle     float64 `json:"throttle"`
	Brake        float64 `json:"brake"`
	Gear         int     `json:"gear"`
	TyreWear     float64 `json:"tyreWear"`
	Fuel         float64 `json:"fuel"`
	TyreTemp     float64 `json:"tyreTemp"`
	EngineTemp   float64 `json:"engineTemp"`
	Acceleration float64 `json:"acceleration"`
}

// Result is one row of a settled race.
type Result struct {
	DriverID      string  `json:"driverId"`
	DriverName    string  `json:"driverName"`
	Team          string  `json:"team"`
	TeamColor     string  `json:"teamColor"`
	Photo         string  `json:"photo"`
	Position      int     `json:"position"`
	Points        int     `json:"points"`
	TimeGap       string  `json:"timeGap"`
	PriceChange   float64 `json:"priceChange"`
	FinalPrice    int64   `json:"finalPrice"`
	PreviousPrice int64   `json:"previousPrice"`
}

// DriverUpdate is the per-driver write settlement produces.
type DriverUpdate struct {
	DriverID         string
	Price            int64
	ChangePercent    float64
	LastRacePosition int
	PointsDelta      int
	LastUpdated      time.Time
}

// State is the singleton race lifecycle document. It is the authoritative
// cross-client synchronization point; every instance treats the stored copy
// as ground truth after each round-trip.
type State struct {
	RaceID       string                       `json:"raceId"`
	IsOngoing    bool                         `json:"isOngoing"`
	RaceFinished bool                         `json:"raceFinished"`
	CurrentLap   int                          `json:"currentLap"`
	Positions    []GridEntry                  `json:"positions"`
	Results      []Result                     `json:"results"`
	Telemetry    map[string][]TelemetrySample `json:"telemetryHistory,omitempty"`
	LastUpdated  time.Time                    `json:"lastUpdated"`
	NextRaceTime time.Time                    `json:"nextRaceTime"`
	SeasonStart  time.Time                    `json:"seasonStart"`
	SeasonEnd    time.Time                    `json:"seasonEnd"`
}

// Phase is the display state derived from State plus wall-clock time.
type Phase string

const (
	PhaseBefore   Phase = "before"
	PhaseLive     Phase = "live"
	PhaseFinished Phase = "finished"
	PhaseAfter    Phase = "after"
)

type RaceStatus string

const (
	StatusUpcoming  RaceStatus = "upcoming"
	StatusLive      RaceStatus = "live"
	StatusCompleted RaceStatus = "completed"
)

type Circuit struct {
	CircuitID   string  `json:"circuitId"`
	CircuitName string  `json:"circuitName"`
	Location    string  `json:"location"`
	Country     string  `json:"country"`
	Length      float64 `json:"length"`
}

// ScheduledRace is one calendar race. Status moves upcoming -> live ->
// completed; a completed record only changes again through the cosmetic
// price sync of its newest instance.
type ScheduledRace struct {
	ID            string     `json:"id"`
	Round         int        `json:"round"`
	RaceName      string     `json:"raceName"`
	Circuit       Circuit    `json:"circuit"`
	ScheduledTime time.Time  `json:"scheduledTime"`
	Status        RaceStatus `json:"status"`
	Laps          int        `json:"laps"`
	Results       []Result   `json:"results,omitempty"`
	Winner        string     `json:"winner,omitempty"`
	LastUpdated   time.Time  `json:"lastUpdated"`
}

// LeaderGap renders the gap column for a grid position.
func LeaderGap(position int, jitter float64) string {
	if position <= 1 {
		return "Leader"
	}
	return fmt.Sprintf("+%.3fs", float64(position-1)*1.5+jitter)
}

// RaceTime renders elapsed race time for a lap counter (about 1.8 minutes a
// lap) as MM:SS for the live header.
func RaceTime(lap int) string {
	if lap < 0 {
		lap = 0
	}
	totalSeconds := int(float64(lap) * 1.8 * 60)
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
