package main

import (
	"fmt"
	"strings"
	"time"

	"playstock/internal/api"
	cl "playstock/internal/cli"
	"playstock/internal/race"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func renderRaceState(st api.RaceStateView) error {
	switch st.Phase {
	case race.PhaseLive:
		accent.Printf("\n== LIVE RACE | LAP %d/%d | %s ==\n", st.CurrentLap, st.TotalLaps, st.RaceTime)
	case race.PhaseFinished:
		accent.Println("\n== RACE FINISHED ==")
	case race.PhaseAfter:
		accent.Println("\n== SEASON OVER ==")
	default:
		accent.Printf("\n== NEXT RACE IN %s ==\n", st.Countdown)
	}

	if st.Phase == race.PhaseLive && len(st.Positions) > 0 {
		fmt.Printf("%-4s %-22s %-18s %-12s %8s %6s %5s\n", "POS", "DRIVER", "TEAM", "GAP", "SPEED", "TYRE", "PITS")
		for _, e := range st.Positions {
			fmt.Printf("%-4d %-22s %-18s %-12s %7.0f %5.0f%% %5d\n",
				e.Position,
				truncate(e.Name, 22),
				truncate(e.Team, 18),
				e.Gap,
				e.Speed,
				e.TyreWear,
				e.PitStops,
			)
		}
	}

	if len(st.Results) > 0 {
		fmt.Println()
		accent.Println("Results")
		fmt.Printf("%-4s %-22s %-18s %-10s %6s %8s %10s\n", "POS", "DRIVER", "TEAM", "TIME", "PTS", "DELTA", "PRICE")
		for _, r := range st.Results {
			fmt.Printf("%-4d %-22s %-18s %-10s %6d %8s %10d\n",
				r.Position,
				truncate(r.DriverName, 22),
				truncate(r.Team, 18),
				r.TimeGap,
				r.Points,
				colorizePercent(r.PriceChange),
				r.FinalPrice,
			)
		}
	}

	if st.Phase == race.PhaseBefore && len(st.Results) == 0 {
		printInfo("No race running. Use `pst schedule` to see the calendar.")
	}
	fmt.Println()
	return nil
}

func renderTelemetry(out cl.TelemetryResponse) error {
	accent.Printf("\n== TELEMETRY %s (lap %d) ==\n", out.DriverID, out.Lap)
	if len(out.Samples) == 0 {
		printInfo("No telemetry recorded for this driver.")
		return nil
	}
	fmt.Printf("%-5s %8s %8s %5s %9s %8s %6s\n", "LAP", "SPEED", "RPM", "GEAR", "THROTTLE", "TYRE °C", "FUEL")
	for _, s := range out.Samples {
		fmt.Printf("%-5d %8.1f %8.0f %5d %8.1f%% %8.1f %5.1f\n",
			s.Lap, s.Speed, s.RPM, s.Gear, s.Throttle, s.TyreTemp, s.Fuel)
	}
	fmt.Println()
	return nil
}

func renderSchedule(races []api.ScheduledRaceView) error {
	accent.Println("\n== RACE CALENDAR ==")
	if len(races) == 0 {
		printInfo("No races scheduled.")
		return nil
	}
	fmt.Printf("%-4s %-28s %-22s %-17s %-10s %-22s\n", "RND", "RACE", "CIRCUIT", "TIME", "STATUS", "WINNER")
	for _, r := range races {
		fmt.Printf("%-4d %-28s %-22s %-17s %-10s %-22s\n",
			r.Round,
			truncate(r.RaceName, 28),
			truncate(r.Circuit.CircuitName, 22),
			formatMillis(r.ScheduledTime),
			colorizeStatus(r.Status),
			truncate(r.Winner, 22),
		)
	}
	fmt.Println()
	return nil
}

func renderNextRace(out cl.NextRaceResponse) error {
	r := out.Race
	accent.Printf("\n== ROUND %d: %s ==\n", r.Round, r.RaceName)
	fmt.Printf("Circuit:   %s, %s\n", r.Circuit.CircuitName, r.Circuit.Country)
	fmt.Printf("Length:    %.3f km, %d laps\n", r.Circuit.Length, r.Laps)
	fmt.Printf("Starts:    %s\n", formatMillis(r.ScheduledTime))
	fmt.Printf("Countdown: %s\n", out.Countdown)
	fmt.Println()
	return nil
}

func renderDriversList(drivers []race.Driver) error {
	accent.Println("\n== DRIVER MARKET ==")
	if len(drivers) == 0 {
		printInfo("No drivers found.")
		return nil
	}
	fmt.Printf("%-4s %-22s %-18s %8s %8s %6s %-7s\n", "RANK", "DRIVER", "TEAM", "PRICE", "DELTA", "PTS", "RISK")
	for _, d := range drivers {
		fmt.Printf("%-4d %-22s %-18s %8d %8s %6d %-7s\n",
			d.Rank,
			truncate(d.Name, 22),
			truncate(d.Team, 18),
			d.Price,
			colorizePercent(d.ChangePercent),
			d.Points,
			d.Risk,
		)
	}
	fmt.Println()
	return nil
}

func renderDriverDetail(d race.Driver) error {
	accent.Printf("\n== %s (#%d) ==\n", d.Name, d.Number)
	fmt.Printf("Team:        %s\n", d.Team)
	fmt.Printf("Nationality: %s\n", d.Nationality)
	fmt.Printf("Price:       %d (base %d, %s)\n", d.Price, d.BasePrice, colorizePercent(d.ChangePercent))
	fmt.Printf("Points:      %d\n", d.Points)
	fmt.Printf("Rank:        %d\n", d.Rank)
	fmt.Printf("Last finish: P%d\n", d.LastRacePosition)
	fmt.Printf("Risk:        %s\n", d.Risk)
	a := d.Attributes
	fmt.Printf("Attributes:  spd=%d exp=%d agg=%d con=%d fan=%d\n",
		a.Speed, a.Experience, a.Aggression, a.Consistency, a.Fanbase)
	fmt.Println()
	return nil
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizeStatus(s race.RaceStatus) string {
	switch s {
	case race.StatusLive:
		return danger.Sprint(string(s))
	case race.StatusCompleted:
		return neutral.Sprint(string(s))
	default:
		return success.Sprint(string(s))
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
