package race

import (
	"strings"
	"testing"
)

func TestPointsForPosition(t *testing.T) {
	tests := []struct {
		position int
		want     int
	}{
		{position: 1, want: 25},
		{position: 2, want: 18},
		{position: 3, want: 15},
		{position: 10, want: 1},
		{position: 11, want: 0},
		{position: 20, want: 0},
		{position: 0, want: 0},
		{position: -3, want: 0},
	}
	for _, tc := range tests {
		if got := PointsForPosition(tc.position); got != tc.want {
			t.Fatalf("position=%d got=%d want=%d", tc.position, got, tc.want)
		}
	}
}

func TestPriceChangeForPosition(t *testing.T) {
	if got := PriceChangeForPosition(1); got != 15 {
		t.Fatalf("winner change got=%v want=15", got)
	}
	if got := PriceChangeForPosition(10); got != 0 {
		t.Fatalf("P10 change got=%v want=0", got)
	}
	if got := PriceChangeForPosition(20); got != -6 {
		t.Fatalf("P20 change got=%v want=-6", got)
	}
	if got := PriceChangeForPosition(35); got != -5 {
		t.Fatalf("out-of-table change got=%v want=-5", got)
	}
}

func TestSettledPrice(t *testing.T) {
	tests := []struct {
		previous int64
		pct      float64
		want     int64
	}{
		{previous: 1000, pct: 15, want: 1150},
		{previous: 1000, pct: -6, want: 940},
		{previous: 1000, pct: 0.5, want: 1005},
		{previous: 100, pct: -5, want: 100},
		{previous: 102, pct: -6, want: 100},
		{previous: 101, pct: 0, want: 101},
	}
	for _, tc := range tests {
		got := SettledPrice(tc.previous, tc.pct)
		if got != tc.want {
			t.Fatalf("previous=%d pct=%v got=%d want=%d", tc.previous, tc.pct, got, tc.want)
		}
	}
}

func TestSettledPriceNeverBelowFloor(t *testing.T) {
	for pos := 1; pos <= 25; pos++ {
		got := SettledPrice(MinDriverPrice, PriceChangeForPosition(pos))
		if got < MinDriverPrice {
			t.Fatalf("position %d settled below floor: %d", pos, got)
		}
	}
}

func TestLeaderGap(t *testing.T) {
	if got := LeaderGap(1, 0.4); got != "Leader" {
		t.Fatalf("P1 gap got=%q", got)
	}
	got := LeaderGap(3, 0)
	if got != "+3.000s" {
		t.Fatalf("P3 gap got=%q want=+3.000s", got)
	}
	if !strings.HasPrefix(LeaderGap(20, 0.25), "+") {
		t.Fatalf("trailing gap should be positive")
	}
}

func TestRaceTime(t *testing.T) {
	if got := RaceTime(0); got != "00:00" {
		t.Fatalf("lap 0 got=%q", got)
	}
	if got := RaceTime(10); got != "18:00" {
		t.Fatalf("lap 10 got=%q want=18:00", got)
	}
	if got := RaceTime(-4); got != "00:00" {
		t.Fatalf("negative lap got=%q", got)
	}
}
