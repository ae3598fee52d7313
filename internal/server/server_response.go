package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brk3/habitledger/internal/tracker"
	"github.com/brk3/habitledger/pkg/habit"
)

type HabitListResponse struct {
	Habits []habit.Habit `json:"habits"`
}

type HabitRequest struct {
	Name string `json:"name"`
}

type ToggleResponse struct {
	Date    string `json:"date"`
	HabitID string `json:"habit_id"`
	Done    bool   `json:"done"`
}

type MoodRequest struct {
	// Mood is a number, a mood name or null.
	Mood json.RawMessage `json:"mood"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

// CursorRequest moves the view cursor. Exactly one field should be set;
// Today wins over Date, Date over Delta.
type CursorRequest struct {
	Delta int    `json:"delta,omitempty"`
	Date  string `json:"date,omitempty"`
	Today bool   `json:"today,omitempty"`
}

type CursorResponse struct {
	Date  string `json:"date"`
	Today string `json:"today"`
}

type HealthResponse struct {
	State string `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	_ = writeJSON(w, code, ErrorResponse{Error: msg})
}

// statusFor maps tracker and domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, tracker.ErrUnknownHabit):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrInvalidName), errors.Is(err, habit.ErrInvalidMood):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
