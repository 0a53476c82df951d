package race

import "math"

// History keeps the most recent MaxTelemetryHistory samples per driver,
// oldest dropped first.
type History map[string][]TelemetrySample

func (h History) Push(driverID string, sample TelemetrySample) {
	samples := append(h[driverID], sample)
	if len(samples) > MaxTelemetryHistory {
		samples = samples[len(samples)-MaxTelemetryHistory:]
	}
	h[driverID] = samples
}

// gearFor derives the gear deterministically from speed.
func gearFor(speed float64) int {
	g := int(math.Round(speed / 50))
	if g < 1 {
		return 1
	}
	if g > 8 {
		return 8
	}
	return g
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// lapTelemetry rewrites a grid entry's telemetry for one lap. Position is the
// entry's finalized slot for the lap; front-runners get a small pace bonus
// and run slightly different temperatures. Wear and fuel only ever go down
// outside a pit stop.
func (s *Simulator) lapTelemetry(e *GridEntry, position, lap int, hist History) {
	bonus := float64(GridSize-position) * 0.5
	if bonus < 0 {
		bonus = 0
	}
	e.Position = position
	e.Gap = LeaderGap(position, s.rng.Float64()*0.5)
	e.Speed = math.Round(300 + s.rng.Float64()*50 + bonus)
	e.RPM = math.Round(10000 + s.rng.Float64()*3000)
	e.Throttle = math.Round(70 + s.rng.Float64()*30)
	e.Brake = math.Round(s.rng.Float64() * 80)
	e.Gear = gearFor(e.Speed)
	e.TyreWear = math.Max(0, e.TyreWear-(0.5+s.rng.Float64()))
	e.Fuel = math.Max(0, e.Fuel-(1.2+s.rng.Float64()*0.3))
	e.TyreTemp = round1(95 + s.rng.Float64()*15 - float64(position)*0.2)
	e.EngineTemp = round1(105 + s.rng.Float64()*15 - float64(position)*0.1)
	e.Acceleration = round2(math.Max(2, 6-float64(position)*0.05+s.rng.Float64()*2))

	hist.Push(e.DriverID, TelemetrySample{
		Lap:          lap,
		Speed:        e.Speed,
		RPM:          e.RPM,
		Throttle:     e.Throttle,
		Brake:        e.Brake,
		Gear:         e.Gear,
		TyreTemp:     e.TyreTemp,
		EngineTemp:   e.EngineTemp,
		Fuel:         e.Fuel,
		Acceleration: e.Acceleration,
	})
}

// baselineTelemetry seeds a grid entry on race start.
func (s *Simulator) baselineTelemetry(e *GridEntry) {
	e.Speed = 320 + s.rng.Float64()*20
	e.RPM = 11000 + s.rng.Float64()*2000
	e.Throttle = 85 + s.rng.Float64()*15
	e.Brake = s.rng.Float64() * 100
	e.Gear = gearFor(e.Speed)
	e.TyreWear = 100
	e.Fuel = 100
	e.TyreTemp = 95 + s.rng.Float64()*10
	e.EngineTemp = 105 + s.rng.Float64()*10
	e.Acceleration = 4.5 + s.rng.Float64()*1.5
}
