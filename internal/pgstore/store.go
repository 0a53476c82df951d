package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playstock/internal/race"
)

// Store persists the lifecycle document, the driver market, and the race
// calendar in Postgres. The lifecycle document is a single JSONB row so it
// round-trips whole, the way every replica expects to read it back.
type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func New(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger}
}

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS race_state (
			id smallint PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			doc jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id text PRIMARY KEY,
			name text NOT NULL,
			driver_number int NOT NULL,
			team text NOT NULL,
			team_color text NOT NULL,
			photo text NOT NULL DEFAULT '',
			nationality text NOT NULL DEFAULT '',
			base_price bigint NOT NULL,
			price bigint NOT NULL,
			change_percent double precision NOT NULL DEFAULT 0,
			points int NOT NULL DEFAULT 0,
			rank int NOT NULL DEFAULT 0,
			last_race_position int NOT NULL DEFAULT 0,
			risk text NOT NULL DEFAULT 'medium',
			attributes jsonb NOT NULL DEFAULT '{}',
			last_updated timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS race_schedule (
			id text PRIMARY KEY,
			round int NOT NULL,
			race_name text NOT NULL,
			circuit jsonb NOT NULL,
			scheduled_time timestamptz NOT NULL,
			status text NOT NULL DEFAULT 'upcoming',
			laps int NOT NULL,
			results jsonb,
			winner text NOT NULL DEFAULT '',
			last_updated timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS race_schedule_time_idx ON race_schedule (scheduled_time)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SeedDefaults populates the driver market and the calendar when their tables
// are empty. Re-running it against a seeded database is a no-op.
func (s *Store) SeedDefaults(ctx context.Context, clock race.Clock) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM drivers`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, d := range race.SeedDrivers() {
			attrs, err := json.Marshal(d.Attributes)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO drivers (id, name, driver_number, team, team_color, photo, nationality,
					base_price, price, change_percent, points, rank, last_race_position, risk, attributes, last_updated)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
			`, d.ID, d.Name, d.Number, d.Team, d.TeamColor, d.Photo, d.Nationality,
				d.BasePrice, d.Price, d.ChangePercent, d.Points, d.Rank, d.LastRacePosition, string(d.Risk), attrs)
			if err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		s.log.Info("seeded driver market")
	}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM race_schedule`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, rec := range race.SeedSchedule(clock) {
			circuit, err := json.Marshal(rec.Circuit)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO race_schedule (id, round, race_name, circuit, scheduled_time, status, laps, winner, last_updated)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			`, rec.ID, rec.Round, rec.RaceName, circuit, rec.ScheduledTime, string(rec.Status), rec.Laps, rec.Winner)
			if err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		s.log.Info("seeded race calendar")
	}
	return nil
}

func (s *Store) State(ctx context.Context) (race.State, error) {
	var doc []byte
	err := s.db.QueryRow(ctx, `SELECT doc FROM race_state WHERE id = 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return race.State{}, race.ErrNoState
		}
		return race.State{}, fmt.Errorf("load race state: %w", err)
	}
	var st race.State
	if err := json.Unmarshal(doc, &st); err != nil {
		return race.State{}, fmt.Errorf("decode race state: %w", err)
	}
	return st, nil
}

func (s *Store) SaveState(ctx context.Context, st race.State) error {
	doc, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode race state: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO race_state (id, doc, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, doc)
	if err != nil {
		return fmt.Errorf("save race state: %w", err)
	}
	return nil
}

func (s *Store) Drivers(ctx context.Context) ([]race.Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, driver_number, team, team_color, photo, nationality,
			base_price, price, change_percent, points, rank, last_race_position, risk, attributes, last_updated
		FROM drivers
		ORDER BY rank ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	defer rows.Close()

	var out []race.Driver
	for rows.Next() {
		var d race.Driver
		var risk string
		var attrs []byte
		err := rows.Scan(&d.ID, &d.Name, &d.Number, &d.Team, &d.TeamColor, &d.Photo, &d.Nationality,
			&d.BasePrice, &d.Price, &d.ChangePercent, &d.Points, &d.Rank, &d.LastRacePosition, &risk, &attrs, &d.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		d.Risk = race.RiskTier(risk)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &d.Attributes); err != nil {
				return nil, fmt.Errorf("decode driver attributes: %w", err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDrivers applies settlement rows one by one. A row that fails is
// logged and reported, the remaining rows still get written.
func (s *Store) UpdateDrivers(ctx context.Context, updates []race.DriverUpdate) error {
	var errs []error
	for _, u := range updates {
		tag, err := s.db.Exec(ctx, `
			UPDATE drivers
			SET price = $2,
				change_percent = $3,
				last_race_position = $4,
				points = points + $5,
				last_updated = $6
			WHERE id = $1
		`, u.DriverID, u.Price, u.ChangePercent, u.LastRacePosition, u.PointsDelta, u.LastUpdated)
		if err == nil && tag.RowsAffected() == 0 {
			err = race.ErrDriverNotFound
		}
		if err != nil {
			s.log.Error("driver update failed", "driver_id", u.DriverID, "err", err)
			errs = append(errs, fmt.Errorf("driver %s: %w", u.DriverID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) Schedule(ctx context.Context) ([]race.ScheduledRace, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, round, race_name, circuit, scheduled_time, status, laps, results, winner, last_updated
		FROM race_schedule
		ORDER BY scheduled_time ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	defer rows.Close()

	var out []race.ScheduledRace
	for rows.Next() {
		var rec race.ScheduledRace
		var status string
		var circuit, results []byte
		var scheduled, updated time.Time
		err := rows.Scan(&rec.ID, &rec.Round, &rec.RaceName, &circuit, &scheduled, &status, &rec.Laps, &results, &rec.Winner, &updated)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled race: %w", err)
		}
		rec.ScheduledTime = scheduled
		rec.Status = race.RaceStatus(status)
		rec.LastUpdated = updated
		if len(circuit) > 0 {
			if err := json.Unmarshal(circuit, &rec.Circuit); err != nil {
				return nil, fmt.Errorf("decode circuit: %w", err)
			}
		}
		if len(results) > 0 {
			if err := json.Unmarshal(results, &rec.Results); err != nil {
				return nil, fmt.Errorf("decode results: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) UpdateScheduledRace(ctx context.Context, rec race.ScheduledRace) error {
	var results []byte
	if len(rec.Results) > 0 {
		var err error
		results, err = json.Marshal(rec.Results)
		if err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE race_schedule
		SET status = $2,
			results = $3,
			winner = $4,
			last_updated = $5
		WHERE id = $1
	`, rec.ID, string(rec.Status), results, rec.Winner, rec.LastUpdated)
	if err != nil {
		return fmt.Errorf("update scheduled race: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return race.ErrRaceNotFound
	}
	return nil
}
