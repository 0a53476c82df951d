package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"playstock/internal/config"
	"playstock/internal/race"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the read-mostly HTTP surface over the race engine's store. It
// never mutates race state itself except for the admin live override; the
// worker owns the lifecycle.
type Server struct {
	cfg   config.APIConfig
	log   *slog.Logger
	store race.Store
	clock race.Clock
	mux   *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, store race.Store, clock race.Clock) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:   cfg,
		log:   logger,
		store: store,
		clock: clock,
		mux:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/race", s.handleRaceState)
		r.Get("/race/telemetry/{driver_id}", s.handleTelemetry)
		r.Get("/drivers", s.handleDriversList)
		r.Get("/drivers/{id}", s.handleDriverDetail)
		r.Get("/schedule", s.handleSchedule)
		r.Get("/schedule/next", s.handleNextRace)

		r.Group(func(r chi.Router) {
			r.Use(s.adminMiddleware)
			r.Post("/admin/schedule/{id}/live", s.handleForceLive)
		})
	})
}

func (s *Server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminToken == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled")
			return
		}
		token := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
		if token == "" || token != s.cfg.AdminToken {
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRaceState(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	st, err := s.store.State(r.Context())
	if err != nil {
		if errors.Is(err, race.ErrNoState) {
			writeJSON(w, http.StatusOK, emptyStateView(s.clock, now))
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateView(st, s.clock, now))
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driver_id")
	st, err := s.store.State(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	samples := st.Telemetry[driverID]
	if samples == nil {
		samples = []race.TelemetrySample{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"driverId": driverID,
		"lap":      st.CurrentLap,
		"samples":  samples,
	})
}

func (s *Server) handleDriversList(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.store.Drivers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers})
}

func (s *Server) handleDriverDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	drivers, err := s.store.Drivers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	for _, d := range drivers {
		if d.ID == id {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeError(w, http.StatusNotFound, race.ErrDriverNotFound.Error())
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.store.Schedule(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"races": scheduleView(schedule)})
}

func (s *Server) handleNextRace(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	schedule, err := s.store.Schedule(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var next *race.ScheduledRace
	for i := range schedule {
		rec := schedule[i]
		if rec.Status == race.StatusCompleted || rec.ScheduledTime.Before(now) {
			continue
		}
		if next == nil || rec.ScheduledTime.Before(next.ScheduledTime) {
			next = &schedule[i]
		}
	}
	if next == nil {
		writeError(w, http.StatusNotFound, "no upcoming race")
		return
	}
	view := scheduledRaceView(*next)
	seconds := int(next.ScheduledTime.Sub(now) / time.Second)
	writeJSON(w, http.StatusOK, map[string]any{
		"race":      view,
		"countdown": race.SecondsToClock(seconds),
	})
}

// handleForceLive flips a calendar record to live so the worker starts the
// race on its next poll even outside the daily window.
func (s *Server) handleForceLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	schedule, err := s.store.Schedule(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	for _, rec := range schedule {
		if rec.ID != id {
			continue
		}
		if rec.Status == race.StatusCompleted {
			writeError(w, http.StatusConflict, "race already completed")
			return
		}
		rec.Status = race.StatusLive
		rec.LastUpdated = time.Now()
		if err := s.store.UpdateScheduledRace(r.Context(), rec); err != nil {
			writeDomainError(w, err)
			return
		}
		s.log.Info("schedule record forced live", "race_id", rec.ID)
		writeJSON(w, http.StatusOK, scheduledRaceView(rec))
		return
	}
	writeError(w, http.StatusNotFound, race.ErrRaceNotFound.Error())
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, race.ErrNoState):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, race.ErrDriverNotFound), errors.Is(err, race.ErrRaceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
