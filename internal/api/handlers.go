package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pillarlog/internal/engine"
	"pillarlog/internal/models"
)

// location resolves the request's tz parameter (IANA name) or falls back to
// the configured default. Timestamps themselves always carry an explicit
// offset; tz only governs how civil dates are interpreted.
func (s *Server) location(r *http.Request) (*time.Location, error) {
	name := r.URL.Query().Get("tz")
	if name == "" {
		return s.defaultTZ, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", name)
	}
	return loc, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return d, nil
}

func (s *Server) handleDailyView(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	day, err := parseDate(r.URL.Query().Get("date"), loc)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	cells, err := s.facade.DailyView(r.Context(), day)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  day.Format("2006-01-02"),
		"slots": cells,
	})
}

func (s *Server) handleWeeklyView(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	start, err := parseDate(r.URL.Query().Get("start"), loc)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	week, err := s.facade.WeeklyView(r.Context(), start)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"start": start.Format("2006-01-02"),
		"days":  week,
	})
}

func (s *Server) handleMonthlyView(w http.ResponseWriter, r *http.Request) {
	loc, err := s.location(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	month, err := time.ParseInLocation("2006-01", r.URL.Query().Get("month"), loc)
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid month %q, want YYYY-MM", r.URL.Query().Get("month")))
		return
	}
	view, err := s.facade.MonthlyView(r.Context(), month.Year(), month.Month(), loc)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month.Format("2006-01"),
		"days":  view,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := s.facade.DashboardOverview(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleGoalList(w http.ResponseWriter, r *http.Request) {
	var pillar *models.Pillar
	if raw := r.URL.Query().Get("pillar"); raw != "" {
		p, err := models.ParsePillar(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		pillar = &p
	}
	goals, err := s.facade.ListGoals(r.Context(), pillar)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleGoalCreate(w http.ResponseWriter, r *http.Request) {
	var spec engine.GoalSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	g, err := s.facade.CreateGoal(r.Context(), spec)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGoalUpdate(w http.ResponseWriter, r *http.Request) {
	var upd engine.GoalUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	g, err := s.facade.UpdateGoal(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.facade.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.facade.GoalProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	filter := engine.TaskFilter{GoalID: r.URL.Query().Get("goal")}
	if raw := r.URL.Query().Get("pillar"); raw != "" {
		p, err := models.ParsePillar(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter.Pillar = &p
	}
	tasks, err := s.facade.ListTasks(r.Context(), filter)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var spec engine.TaskSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.facade.CreateTask(r.Context(), spec)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var upd engine.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.facade.UpdateTask(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status models.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	t, err := s.facade.TransitionTask(r.Context(), r.PathValue("id"), body.Status)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.facade.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}

func (s *Server) handleEntryCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskID string    `json:"task_id"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
		Note   string    `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	e, err := s.facade.PlaceEntry(r.Context(), body.TaskID, body.Start, body.End, body.Note)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleEntryMove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	e, err := s.facade.MoveEntry(r.Context(), r.PathValue("id"), body.Start, body.End)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleEntryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.facade.RemoveEntry(r.Context(), r.PathValue("id")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": r.PathValue("id")})
}
