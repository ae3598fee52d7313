package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brk3/habitledger/internal/server"
	"github.com/brk3/habitledger/pkg/habit"
	"github.com/brk3/habitledger/pkg/versioninfo"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Code, http.StatusText(e.Code))
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

type Client struct {
	BaseURL   string
	AuthToken string
	HTTP      *http.Client
}

func New(base, token string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(base, "/"),
		AuthToken: token,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var e server.ErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&e)
		return &StatusError{Op: op, Code: res.StatusCode, Message: e.Error}
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) Version(ctx context.Context) (*versioninfo.VersionInfo, error) {
	var out versioninfo.VersionInfo
	if err := c.do(ctx, "version", http.MethodGet, "/version", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	var out server.HabitListResponse
	if err := c.do(ctx, "list habits", http.MethodGet, "/habits/", nil, &out); err != nil {
		return nil, err
	}
	return out.Habits, nil
}

func (c *Client) AddHabit(ctx context.Context, name string) (*habit.Habit, error) {
	var out habit.Habit
	if err := c.do(ctx, "add habit", http.MethodPost, "/habits/", server.HabitRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameHabit(ctx context.Context, id, name string) (*habit.Habit, error) {
	var out habit.Habit
	path := "/habits/" + url.PathEscape(id)
	if err := c.do(ctx, "rename habit", http.MethodPatch, path, server.HabitRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveHabit(ctx context.Context, id string) error {
	return c.do(ctx, "remove habit", http.MethodDelete, "/habits/"+url.PathEscape(id), nil, nil)
}

// ResolveHabit finds a habit by id or, failing that, by case-insensitive
// name.
func (c *Client) ResolveHabit(ctx context.Context, ref string) (*habit.Habit, error) {
	habits, err := c.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	for _, h := range habits {
		if h.ID == ref {
			return &h, nil
		}
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return &h, nil
		}
	}
	return nil, fmt.Errorf("no habit matches %q", ref)
}

// Day fetches the summary for date, a YYYY-MM-DD key or "cursor".
func (c *Client) Day(ctx context.Context, date string) (*habit.DaySummary, error) {
	var out habit.DaySummary
	if err := c.do(ctx, "get day", http.MethodGet, "/days/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Toggle(ctx context.Context, date, habitID string) (bool, error) {
	var out server.ToggleResponse
	path := "/days/" + url.PathEscape(date) + "/habits/" + url.PathEscape(habitID) + "/toggle"
	if err := c.do(ctx, "toggle habit", http.MethodPost, path, nil, &out); err != nil {
		return false, err
	}
	return out.Done, nil
}

// SetMood sends mood as given: a number, a name, or "" to clear it.
func (c *Client) SetMood(ctx context.Context, date, mood string) error {
	raw, err := json.Marshal(mood)
	if err != nil {
		return err
	}
	return c.do(ctx, "set mood", http.MethodPut, "/days/"+url.PathEscape(date)+"/mood", server.MoodRequest{Mood: raw}, nil)
}

func (c *Client) SetNotes(ctx context.Context, date, notes string) error {
	return c.do(ctx, "set notes", http.MethodPut, "/days/"+url.PathEscape(date)+"/notes", server.NotesRequest{Notes: notes}, nil)
}

func (c *Client) ResetDay(ctx context.Context, date string) error {
	return c.do(ctx, "reset day", http.MethodDelete, "/days/"+url.PathEscape(date), nil, nil)
}

func (c *Client) ResetAll(ctx context.Context) error {
	return c.do(ctx, "reset all", http.MethodDelete, "/days/?confirm=true", nil, nil)
}

func (c *Client) Week(ctx context.Context, date string) (*habit.WeeklyStats, error) {
	var out habit.WeeklyStats
	if err := c.do(ctx, "weekly stats", http.MethodGet, "/stats/week/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Month(ctx context.Context, year int, month time.Month) (*habit.MonthlyStats, error) {
	var out habit.MonthlyStats
	path := fmt.Sprintf("/stats/month/%d/%d", year, int(month))
	if err := c.do(ctx, "monthly stats", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Badges(ctx context.Context) (*habit.BadgeTally, error) {
	var out habit.BadgeTally
	if err := c.do(ctx, "badges", http.MethodGet, "/stats/badges", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cursor(ctx context.Context) (*server.CursorResponse, error) {
	var out server.CursorResponse
	if err := c.do(ctx, "get cursor", http.MethodGet, "/cursor", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MoveCursor(ctx context.Context, req server.CursorRequest) (*server.CursorResponse, error) {
	var out server.CursorResponse
	if err := c.do(ctx, "move cursor", http.MethodPost, "/cursor", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
