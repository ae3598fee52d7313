package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brk3/habitledger/internal/config"
	"github.com/brk3/habitledger/internal/server"
	"github.com/brk3/habitledger/internal/storage/sqlite"
	"github.com/brk3/habitledger/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// newTestAPI serves a loaded tracker over an in-memory sqlite store and
// returns a config file pointing the CLI at it.
func newTestAPI(t *testing.T) string {
	t.Helper()

	store, err := sqlite.NewMemory()
	require.NoError(t, err)
	tr := tracker.New(tracker.Options{
		Store:         store,
		Location:      time.UTC,
		DefaultHabits: []string{"Read", "Walk"},
		BadgeCapacity: 12,
		Now:           func() time.Time { return testNow },
	})
	require.NoError(t, tr.Load(context.Background()))

	srv, err := server.New(&config.Config{}, tr, store)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = tr.Close(context.Background())
		_ = store.Close()
	})

	return writeConfig(t, fmt.Sprintf("api_base_url: %s\ntimezone: UTC\nlog_level: error\n", ts.URL))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()

	prevNow := now
	now = func() time.Time { return testNow }
	t.Cleanup(func() { now = prevNow })
	resetAllYes = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	require.NoError(t, err, out)
	return out
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "nope.yaml"), "habit", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config file")
}

func TestVersion(t *testing.T) {
	cfgPath := newTestAPI(t)

	out := mustRun(t, cfgPath, "version")
	assert.Contains(t, out, "Client Version:")
	assert.Contains(t, out, "Server Version:")
}

func TestVersion_ServerDown(t *testing.T) {
	cfgPath := writeConfig(t, "api_base_url: http://127.0.0.1:1\n")

	out := mustRun(t, cfgPath, "version")
	assert.Contains(t, out, "Client Version:")
	assert.Contains(t, out, "Error fetching server version:")
}

func TestHabitCommands(t *testing.T) {
	cfgPath := newTestAPI(t)

	out := mustRun(t, cfgPath, "habit", "list")
	assert.Contains(t, out, "Read")
	assert.Contains(t, out, "Walk")

	out = mustRun(t, cfgPath, "habit", "add", "Stretch", "daily")
	assert.Contains(t, out, `Added habit "Stretch daily"`)

	out = mustRun(t, cfgPath, "habit", "rename", "stretch daily", "Yoga")
	assert.Contains(t, out, `Renamed "Stretch daily" to "Yoga"`)

	out = mustRun(t, cfgPath, "habit", "rm", "yoga")
	assert.Contains(t, out, `Removed habit "Yoga"`)

	out = mustRun(t, cfgPath, "habit", "ls")
	assert.NotContains(t, out, "Yoga")

	_, err := run(t, cfgPath, "habit", "rm", "Swim")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no habit matches "Swim"`)
}

func TestHabitAdd_BlankName(t *testing.T) {
	cfgPath := newTestAPI(t)

	_, err := run(t, cfgPath, "habit", "add", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestToggleAndDay(t *testing.T) {
	cfgPath := newTestAPI(t)

	out := mustRun(t, cfgPath, "toggle", "read", "today")
	assert.Equal(t, "Read: done\n", out)

	out = mustRun(t, cfgPath, "day", "2025-06-15")
	assert.Contains(t, out, "2025-06-15  50%")
	assert.Contains(t, out, "[x] Read")
	assert.Contains(t, out, "[ ] Walk")

	out = mustRun(t, cfgPath, "toggle", "Read", "2025-06-15")
	assert.Equal(t, "Read: not done\n", out)
}

func TestDay_CompleteShowsStreak(t *testing.T) {
	cfgPath := newTestAPI(t)

	mustRun(t, cfgPath, "toggle", "Read")
	mustRun(t, cfgPath, "toggle", "Walk")

	out := mustRun(t, cfgPath, "day")
	assert.Contains(t, out, "2025-06-15  100%  complete")
	assert.Contains(t, out, "streak: 1 (longest 1)")
}

func TestMoodAndNotes(t *testing.T) {
	cfgPath := newTestAPI(t)

	out := mustRun(t, cfgPath, "mood", "good", "yesterday")
	assert.Equal(t, "Mood set to good\n", out)
	mustRun(t, cfgPath, "notes", "slept well", "2025-06-14")

	out = mustRun(t, cfgPath, "day", "2025-06-14")
	assert.Contains(t, out, "mood: good")
	assert.Contains(t, out, "notes: slept well")

	_, err := run(t, cfgPath, "mood", "ecstatic")
	require.Error(t, err)

	mustRun(t, cfgPath, "mood", "unset", "2025-06-14")
	out = mustRun(t, cfgPath, "day", "2025-06-14")
	assert.NotContains(t, out, "mood:")
}

func TestInvalidDate(t *testing.T) {
	cfgPath := newTestAPI(t)

	_, err := run(t, cfgPath, "day", "15/06/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date must be YYYY-MM-DD")
}

func TestCursorCommands(t *testing.T) {
	cfgPath := newTestAPI(t)

	out := mustRun(t, cfgPath, "cursor")
	assert.Equal(t, "Viewing 2025-06-15 (today)\n", out)

	out = mustRun(t, cfgPath, "cursor", "prev", "2")
	assert.Equal(t, "Viewing 2025-06-13 (today is 2025-06-15)\n", out)

	out = mustRun(t, cfgPath, "cursor", "next")
	assert.Equal(t, "Viewing 2025-06-14 (today is 2025-06-15)\n", out)

	// Commands without a date act on the viewed day.
	mustRun(t, cfgPath, "toggle", "Walk")
	out = mustRun(t, cfgPath, "day", "2025-06-14")
	assert.Contains(t, out, "[x] Walk")

	out = mustRun(t, cfgPath, "cursor", "goto", "2025-06-01")
	assert.Equal(t, "Viewing 2025-06-01 (today is 2025-06-15)\n", out)

	out = mustRun(t, cfgPath, "cursor", "today")
	assert.Equal(t, "Viewing 2025-06-15 (today)\n", out)

	_, err := run(t, cfgPath, "cursor", "prev", "zero")
	require.Error(t, err)
}

func TestWeekAndMonth(t *testing.T) {
	cfgPath := newTestAPI(t)

	mustRun(t, cfgPath, "toggle", "Read", "2025-06-15")
	mustRun(t, cfgPath, "toggle", "Walk", "2025-06-15")

	out := mustRun(t, cfgPath, "week", "2025-06-15")
	assert.Contains(t, out, "Week 2025-06-15 to 2025-06-21")
	assert.Contains(t, out, "[x] 2025-06-15  100%")

	out = mustRun(t, cfgPath, "month")
	assert.Contains(t, out, "June 2025")

	out = mustRun(t, cfgPath, "month", "2025-05")
	assert.Contains(t, out, "May 2025  0%")

	_, err := run(t, cfgPath, "month", "2025-13")
	require.Error(t, err)
}

func TestBadges(t *testing.T) {
	cfgPath := newTestAPI(t)

	out := mustRun(t, cfgPath, "badges")
	assert.Equal(t, "0 of 12 badges as of 2025-06-15\n", out)
}

func TestResetDay(t *testing.T) {
	cfgPath := newTestAPI(t)

	mustRun(t, cfgPath, "toggle", "Read", "2025-06-10")
	out := mustRun(t, cfgPath, "reset", "day", "2025-06-10")
	assert.Equal(t, "Reset 2025-06-10\n", out)

	out = mustRun(t, cfgPath, "day", "2025-06-10")
	assert.Contains(t, out, "[ ] Read")
}

func TestResetAll_RequiresYes(t *testing.T) {
	cfgPath := newTestAPI(t)
	mustRun(t, cfgPath, "toggle", "Read", "2025-06-10")

	_, err := run(t, cfgPath, "reset", "all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out := mustRun(t, cfgPath, "reset", "all", "--yes")
	assert.Equal(t, "All days deleted\n", out)

	out = mustRun(t, cfgPath, "day", "2025-06-10")
	assert.Contains(t, out, "[ ] Read")
	out = mustRun(t, cfgPath, "habit", "list")
	assert.Contains(t, out, "Read")
}

func TestNudge_RequiresCredentials(t *testing.T) {
	t.Setenv("HABITS_RESEND_API_KEY", "")
	t.Setenv("HABITS_NOTIFY_EMAIL", "")
	cfgPath := writeConfig(t, "api_base_url: http://127.0.0.1:1\n")

	_, err := run(t, cfgPath, "nudge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend_api_key")
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "legacy.json")
	require.NoError(t, os.WriteFile(legacy, []byte(
		`{"habits":["Read","Walk"],"tracker":{"2025-06-15":{"habits":{"0-0":true,"1-0":true},"mood":3,"notes":""}}}`,
	), 0o600))
	cfgPath := writeConfig(t, fmt.Sprintf(
		"storage:\n  backend: bolt\n  path: %s\n  legacy_path: %s\nlog_level: error\n",
		filepath.Join(dir, "habits.db"), legacy,
	))

	out := mustRun(t, cfgPath, "migrate")
	assert.Equal(t, "Migrated 2 habits and 1 days\n", out)

	out = mustRun(t, cfgPath, "migrate", legacy)
	assert.Equal(t, "Nothing to do: already migrated\n", out)
}

func TestMigrate_NoLegacyPath(t *testing.T) {
	cfgPath := writeConfig(t, fmt.Sprintf("storage:\n  path: %s\n", filepath.Join(t.TempDir(), "habits.db")))

	_, err := run(t, cfgPath, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "legacy_path")
}
