package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/internal/logger"
	"github.com/brk3/habitledger/internal/tracker"
	"github.com/brk3/habitledger/pkg/habit"
	"github.com/brk3/habitledger/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
)

const maxNotesLength = 4096

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
	}
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	state := s.tracker.State()
	code := http.StatusOK
	if state != tracker.StateReady {
		code = http.StatusServiceUnavailable
	}
	_ = writeJSON(w, code, HealthResponse{State: state.String()})
}

// dateParam reads {date} as YYYY-MM-DD or the literal "cursor".
func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := chi.URLParam(r, "date")
	if raw == "cursor" {
		c, err := s.tracker.Cursor()
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return time.Time{}, false
		}
		return c, true
	}
	d, err := datekey.Parse(raw, s.tracker.Location())
	if err != nil {
		logger.Debug("Invalid date parameter", "date", raw, "error", err)
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD or cursor")
		return time.Time{}, false
	}
	return d, true
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	habits, err := s.tracker.Habits()
	if err != nil {
		logger.Warn("Failed to list habits", "user_id", userID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Debug("Listed habits", "user_id", userID, "count", len(habits))
	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize habit list response", "user_id", userID, "error", err)
	}
}

func (s *Server) addHabit(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	var req HabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid JSON in add habit request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	h, err := s.tracker.AddHabit(req.Name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Info("Habit added", "user_id", userID, "habit_id", h.ID, "habit_name", h.Name)
	if err := writeJSON(w, http.StatusCreated, h); err != nil {
		logger.Error("Failed to serialize add habit response", "habit_id", h.ID, "error", err)
	}
}

func (s *Server) renameHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	var req HabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid JSON in rename habit request", "habit_id", habitID, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	h, err := s.tracker.RenameHabit(habitID, req.Name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Info("Habit renamed", "habit_id", h.ID, "habit_name", h.Name)
	if err := writeJSON(w, http.StatusOK, h); err != nil {
		logger.Error("Failed to serialize rename habit response", "habit_id", h.ID, "error", err)
	}
}

func (s *Server) removeHabit(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "habit_id")
	userID := userIDFromContext(s.cfg.AuthEnabled, r)
	if err := s.tracker.RemoveHabit(habitID); err != nil {
		logger.Warn("Failed to remove habit", "user_id", userID, "habit_id", habitID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Info("Habit removed", "user_id", userID, "habit_id", habitID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getDay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	summary, err := s.tracker.Day(d)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := writeJSON(w, http.StatusOK, summary); err != nil {
		logger.Error("Failed to serialize day summary", "date", summary.Date, "error", err)
	}
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	done, err := s.tracker.ToggleHabit(d, habitID)
	if err != nil {
		logger.Warn("Failed to toggle habit", "date", datekey.Key(d), "habit_id", habitID, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Debug("Toggled habit", "date", datekey.Key(d), "habit_id", habitID, "done", done)
	resp := ToggleResponse{Date: datekey.Key(d), HabitID: habitID, Done: done}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize toggle response", "habit_id", habitID, "error", err)
	}
}

func (s *Server) setMood(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	var req MoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	var text string
	if err := json.Unmarshal(req.Mood, &text); err != nil {
		text = string(req.Mood)
	}
	m, err := habit.ParseMood(text)
	if err == nil {
		err = s.tracker.SetMood(d, m)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setNotes(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	var req NotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Notes) > maxNotesLength {
		writeError(w, http.StatusBadRequest, "notes must be at most "+strconv.Itoa(maxNotesLength)+" bytes")
		return
	}
	if err := s.tracker.SetNotes(d, req.Notes); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetDay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	if err := s.tracker.ResetDay(d); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Info("Day reset", "date", datekey.Key(d))
	w.WriteHeader(http.StatusNoContent)
}

// resetAll wipes the whole ledger. The caller must pass confirm=true.
func (s *Server) resetAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "refusing to wipe all data without confirm=true")
		return
	}
	if err := s.tracker.ResetAll(); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	logger.Warn("All day records wiped", "user_id", userIDFromContext(s.cfg.AuthEnabled, r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getWeek(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	stats, err := s.tracker.Week(d)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := writeJSON(w, http.StatusOK, stats); err != nil {
		logger.Error("Failed to serialize weekly stats", "error", err)
	}
}

func (s *Server) getMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	stats, err := s.tracker.Month(year, time.Month(month))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := writeJSON(w, http.StatusOK, stats); err != nil {
		logger.Error("Failed to serialize monthly stats", "error", err)
	}
}

func (s *Server) getBadges(w http.ResponseWriter, _ *http.Request) {
	tally, err := s.tracker.Badges()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if err := writeJSON(w, http.StatusOK, tally); err != nil {
		logger.Error("Failed to serialize badge tally", "error", err)
	}
}

func (s *Server) getCursor(w http.ResponseWriter, _ *http.Request) {
	c, err := s.tracker.Cursor()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeCursor(w, c)
}

func (s *Server) moveCursor(w http.ResponseWriter, r *http.Request) {
	var req CursorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var (
		c   time.Time
		err error
	)
	switch {
	case req.Today:
		c, err = s.tracker.JumpToday()
	case req.Date != "":
		d, perr := datekey.Parse(req.Date, s.tracker.Location())
		if perr != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		c, err = s.tracker.JumpTo(d)
	default:
		c, err = s.tracker.Navigate(req.Delta)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.writeCursor(w, c)
}

func (s *Server) writeCursor(w http.ResponseWriter, c time.Time) {
	resp := CursorResponse{Date: datekey.Key(c), Today: datekey.Key(s.tracker.Today())}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize cursor response", "error", err)
	}
}
