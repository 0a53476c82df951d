package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"playstock/internal/config"
	"playstock/internal/db"
	"playstock/internal/pgstore"
	"playstock/internal/race"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := pgstore.New(pool, logger)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	clock := race.Clock{
		SeasonStart:    cfg.SeasonStart,
		SeasonEnd:      cfg.SeasonEnd,
		Offset:         cfg.UTCOffset,
		RaceHour:       cfg.RaceHour,
		RaceDuration:   cfg.RaceDuration,
		PostRaceWindow: cfg.PostRaceWindow,
	}
	if cfg.StartupSeed {
		if err := store.SeedDefaults(ctx, clock); err != nil {
			logger.Error("seed defaults failed", "err", err)
			os.Exit(1)
		}
	}

	rng := race.NewRand(cfg.SimSeed)
	sim := race.NewSimulator(race.SimConfig{
		TotalLaps:      cfg.TotalLaps,
		GridSize:       cfg.GridSize,
		PitWindowOpen:  cfg.PitWindowOpen,
		PitWindowClose: cfg.PitWindowClose,
		PitProbability: cfg.PitProbability,
		SwapStrongProb: cfg.SwapStrongProb,
		SwapWeakProb:   cfg.SwapWeakProb,
	}, rng)
	ctrl := race.NewController(store, clock, sim, rng, logger)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("PLAYSTOCK_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := ctrl.Poll(ctx, time.Now()); err != nil {
			logger.Error("poll failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	pollTicker := time.NewTicker(cfg.PollEvery)
	defer pollTicker.Stop()
	lapTicker := time.NewTicker(cfg.LapEvery)
	defer lapTicker.Stop()

	logger.Info("worker started", "poll_every", cfg.PollEvery.String(), "lap_every", cfg.LapEvery.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-pollTicker.C:
			if err := ctrl.Poll(ctx, time.Now()); err != nil {
				logger.Error("lifecycle poll failed", "err", err)
			}
		case <-lapTicker.C:
			if err := ctrl.AdvanceLap(ctx, time.Now()); err != nil {
				logger.Error("lap advance failed", "err", err)
			}
		}
	}
}
