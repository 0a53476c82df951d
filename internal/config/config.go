package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr        string
	DatabaseURL string
	AdminToken  string
}

type WorkerConfig struct {
	DatabaseURL string

	PollEvery time.Duration
	LapEvery  time.Duration

	SeasonStart    time.Time
	SeasonEnd      time.Time
	UTCOffset      time.Duration
	RaceHour       int
	RaceDuration   time.Duration
	PostRaceWindow time.Duration

	TotalLaps      int
	GridSize       int
	PitWindowOpen  int
	PitWindowClose int
	PitProbability float64
	SwapStrongProb float64
	SwapWeakProb   float64

	SimSeed     int64
	StartupSeed bool
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("PLAYSTOCK_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:        addr,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AdminToken:  strings.TrimSpace(os.Getenv("PLAYSTOCK_ADMIN_TOKEN")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		PollEvery: envDurationDefault("PLAYSTOCK_POLL_EVERY", 2*time.Second),
		LapEvery:  envDurationDefault("PLAYSTOCK_LAP_EVERY", 5*time.Second),

		SeasonStart:    envTimeDefault("PLAYSTOCK_SEASON_START", "2026-02-18T17:00:00+05:30"),
		SeasonEnd:      envTimeDefault("PLAYSTOCK_SEASON_END", "2026-03-15T19:00:00+05:30"),
		UTCOffset:      envDurationDefault("PLAYSTOCK_UTC_OFFSET", 5*time.Hour+30*time.Minute),
		RaceHour:       envIntDefault("PLAYSTOCK_RACE_HOUR", 17),
		RaceDuration:   envDurationDefault("PLAYSTOCK_RACE_DURATION", 2*time.Hour),
		PostRaceWindow: envDurationDefault("PLAYSTOCK_POST_RACE_WINDOW", 30*time.Minute),

		TotalLaps:      envIntDefault("PLAYSTOCK_TOTAL_LAPS", 57),
		GridSize:       envIntDefault("PLAYSTOCK_GRID_SIZE", 20),
		PitWindowOpen:  envIntDefault("PLAYSTOCK_PIT_WINDOW_OPEN", 15),
		PitWindowClose: envIntDefault("PLAYSTOCK_PIT_WINDOW_CLOSE", 45),
		PitProbability: envFloatDefault("PLAYSTOCK_PIT_PROBABILITY", 0.03),
		SwapStrongProb: envFloatDefault("PLAYSTOCK_SWAP_STRONG_PROB", 0.55),
		SwapWeakProb:   envFloatDefault("PLAYSTOCK_SWAP_WEAK_PROB", 0.25),

		SimSeed:     envInt64Default("PLAYSTOCK_SIM_SEED", 0),
		StartupSeed: envBoolDefault("PLAYSTOCK_STARTUP_SEED", true),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if !cfg.SeasonEnd.After(cfg.SeasonStart) {
		return cfg, fmt.Errorf("season end %s does not follow season start %s", cfg.SeasonEnd, cfg.SeasonStart)
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("PST_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envTimeDefault(key, fallback string) time.Time {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		v = fallback
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, fallback)
	}
	return t
}
