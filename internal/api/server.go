// Package api is the HTTP+JSON realization of the query facade. It maps
// requests to facade calls and failure kinds to statuses; no domain logic
// lives here.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"pillarlog/internal/engine"
)

// Server is the HTTP API server.
type Server struct {
	facade    *engine.Facade
	defaultTZ *time.Location
	mux       *http.ServeMux
}

// New creates a Server. defaultTZ is applied when a request carries no tz
// parameter; the engine itself never guesses a timezone.
func New(facade *engine.Facade, defaultTZ *time.Location) *Server {
	if defaultTZ == nil {
		defaultTZ = time.UTC
	}
	s := &Server{
		facade:    facade,
		defaultTZ: defaultTZ,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Views
	s.mux.HandleFunc("GET /api/views/daily", s.handleDailyView)
	s.mux.HandleFunc("GET /api/views/weekly", s.handleWeeklyView)
	s.mux.HandleFunc("GET /api/views/monthly", s.handleMonthlyView)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	// Goals
	s.mux.HandleFunc("GET /api/goals", s.handleGoalList)
	s.mux.HandleFunc("POST /api/goals", s.handleGoalCreate)
	s.mux.HandleFunc("PATCH /api/goals/{id}", s.handleGoalUpdate)
	s.mux.HandleFunc("DELETE /api/goals/{id}", s.handleGoalDelete)
	s.mux.HandleFunc("GET /api/goals/{id}/progress", s.handleGoalProgress)

	// Tasks
	s.mux.HandleFunc("GET /api/tasks", s.handleTaskList)
	s.mux.HandleFunc("POST /api/tasks", s.handleTaskCreate)
	s.mux.HandleFunc("PATCH /api/tasks/{id}", s.handleTaskUpdate)
	s.mux.HandleFunc("POST /api/tasks/{id}/status", s.handleTaskStatus)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleTaskDelete)

	// Time entries
	s.mux.HandleFunc("POST /api/entries", s.handleEntryCreate)
	s.mux.HandleFunc("PATCH /api/entries/{id}", s.handleEntryMove)
	s.mux.HandleFunc("DELETE /api/entries/{id}", s.handleEntryDelete)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

// errorBody is the wire shape of every failure: a stable kind, a
// human-readable detail, and the colliding entry id for slot conflicts.
type errorBody struct {
	Kind            string `json:"kind"`
	Detail          string `json:"detail"`
	ConflictEntryID string `json:"conflict_entry_id,omitempty"`
}

func writeEngineError(w http.ResponseWriter, err error) {
	kind := engine.KindName(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrValidation), errors.Is(err, engine.ErrInvalidAlignment):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrUnknownGoal), errors.Is(err, engine.ErrUnknownTask), errors.Is(err, engine.ErrUnknownEntry):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrSlotConflict), errors.Is(err, engine.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	if kind == "" {
		kind = "internal"
	}
	writeJSON(w, status, map[string]errorBody{"error": {
		Kind:            kind,
		Detail:          err.Error(),
		ConflictEntryID: engine.ConflictEntryID(err),
	}})
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {
		Kind:   "validation",
		Detail: detail,
	}})
}
