package race

import "testing"

func TestHistoryPushBounded(t *testing.T) {
	hist := History{}
	for lap := 1; lap <= MaxTelemetryHistory+10; lap++ {
		hist.Push("d1", TelemetrySample{Lap: lap})
	}
	samples := hist["d1"]
	if len(samples) != MaxTelemetryHistory {
		t.Fatalf("history size got=%d want=%d", len(samples), MaxTelemetryHistory)
	}
	if samples[0].Lap != 11 {
		t.Fatalf("oldest kept sample lap got=%d want=11", samples[0].Lap)
	}
	if samples[len(samples)-1].Lap != MaxTelemetryHistory+10 {
		t.Fatalf("newest sample lap got=%d", samples[len(samples)-1].Lap)
	}
}

func TestGearFor(t *testing.T) {
	tests := []struct {
		speed float64
		want  int
	}{
		{speed: 0, want: 1},
		{speed: 40, want: 1},
		{speed: 175, want: 4},
		{speed: 350, want: 7},
		{speed: 900, want: 8},
	}
	for _, tc := range tests {
		if got := gearFor(tc.speed); got != tc.want {
			t.Fatalf("speed=%v gear got=%d want=%d", tc.speed, got, tc.want)
		}
	}
}

func TestLapTelemetryRanges(t *testing.T) {
	sim := NewSimulator(DefaultSimConfig(), NewRand(17))
	hist := History{}
	e := GridEntry{DriverID: "d1", TyreWear: 100, Fuel: 100}

	prevWear, prevFuel := e.TyreWear, e.Fuel
	for lap := 2; lap <= 12; lap++ {
		sim.lapTelemetry(&e, 5, lap, hist)
		if e.Speed < 300 || e.Speed > 360 {
			t.Fatalf("lap %d speed out of range: %v", lap, e.Speed)
		}
		if e.Gear < 1 || e.Gear > 8 {
			t.Fatalf("lap %d gear out of range: %d", lap, e.Gear)
		}
		if e.TyreWear >= prevWear {
			t.Fatalf("lap %d tyre wear did not decrease: %v -> %v", lap, prevWear, e.TyreWear)
		}
		if e.Fuel >= prevFuel {
			t.Fatalf("lap %d fuel did not decrease: %v -> %v", lap, prevFuel, e.Fuel)
		}
		if e.TyreWear < 0 || e.Fuel < 0 {
			t.Fatalf("lap %d wear/fuel went negative", lap)
		}
		prevWear, prevFuel = e.TyreWear, e.Fuel
	}
	if len(hist["d1"]) != 11 {
		t.Fatalf("history samples got=%d want=11", len(hist["d1"]))
	}
}

func TestLapTelemetryWearFloorsAtZero(t *testing.T) {
	sim := NewSimulator(DefaultSimConfig(), NewRand(17))
	hist := History{}
	e := GridEntry{DriverID: "d1", TyreWear: 0.2, Fuel: 0.4}
	sim.lapTelemetry(&e, 1, 2, hist)
	if e.TyreWear != 0 || e.Fuel != 0 {
		t.Fatalf("wear=%v fuel=%v want both 0", e.TyreWear, e.Fuel)
	}
}

func TestBaselineTelemetry(t *testing.T) {
	sim := NewSimulator(DefaultSimConfig(), NewRand(23))
	e := GridEntry{DriverID: "d1"}
	sim.baselineTelemetry(&e)
	if e.TyreWear != 100 || e.Fuel != 100 {
		t.Fatalf("baseline wear=%v fuel=%v want 100", e.TyreWear, e.Fuel)
	}
	if e.Speed < 320 || e.Speed > 340 {
		t.Fatalf("baseline speed out of range: %v", e.Speed)
	}
	if e.Gear < 1 || e.Gear > 8 {
		t.Fatalf("baseline gear out of range: %d", e.Gear)
	}
}
