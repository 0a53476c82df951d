package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "playstock/internal/cli"
	"playstock/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "pst",
		Short:        "Playstock race viewer",
		SilenceUsage: true,
	}

	root.AddCommand(
		newRaceCmd(&apiBase),
		newScheduleCmd(&apiBase),
		newNextCmd(&apiBase),
		newDriversCmd(&apiBase),
		newAdminCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newRaceCmd(apiBase *string) *cobra.Command {
	race := &cobra.Command{
		Use:   "race",
		Short: "Show the current race state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).RaceState(ctx)
			if err != nil {
				return err
			}
			return renderRaceState(out)
		},
	}

	race.AddCommand(newRaceWatchCmd(apiBase))
	race.AddCommand(newRaceTelemetryCmd(apiBase))
	return race
}

func newRaceWatchCmd(apiBase *string) *cobra.Command {
	var every time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Follow the live standings, refreshing until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(apiBase)
			ticker := time.NewTicker(every)
			defer ticker.Stop()

			for {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				out, err := client.RaceState(ctx)
				cancel()
				if err != nil {
					printError(err.Error())
				} else if err := renderRaceState(out); err != nil {
					return err
				}
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	watch.Flags().DurationVar(&every, "every", 5*time.Second, "refresh interval")
	return watch
}

func newRaceTelemetryCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "telemetry DRIVER_ID",
		Short: "Show a driver's recent lap telemetry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Telemetry(ctx, args[0])
			if err != nil {
				return err
			}
			return renderTelemetry(out)
		},
	}
}

func newScheduleCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show the race calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Schedule(ctx)
			if err != nil {
				return err
			}
			return renderSchedule(out)
		},
	}
}

func newNextCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next scheduled race and its countdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).NextRace(ctx)
			if err != nil {
				return err
			}
			return renderNextRace(out)
		},
	}
}

func newDriversCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "drivers [DRIVER_ID]",
		Short: "List the driver market or inspect one driver",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			if len(args) == 1 {
				out, err := client.Driver(ctx, args[0])
				if err != nil {
					return err
				}
				return renderDriverDetail(out)
			}
			out, err := client.Drivers(ctx)
			if err != nil {
				return err
			}
			return renderDriversList(out)
		},
	}
}

func newAdminCmd(apiBase *string) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands (requires PLAYSTOCK_ADMIN_TOKEN)",
	}

	admin.AddCommand(&cobra.Command{
		Use:   "live RACE_ID",
		Short: "Force a scheduled race live so the worker starts it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(os.Getenv("PLAYSTOCK_ADMIN_TOKEN"))
			if token == "" {
				return fmt.Errorf("PLAYSTOCK_ADMIN_TOKEN is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).ForceLive(ctx, args[0], token)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Race %s is now %s.", out.ID, out.Status))
			return nil
		},
	})

	return admin
}
