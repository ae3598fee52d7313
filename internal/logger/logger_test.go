package logger

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	if err := Setup("debug", "json"); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	Debug("toggled habit", "habit_id", "abc")

	if !strings.Contains(buf.String(), `"habit_id":"abc"`) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}

func TestSetup_UnknownFormat(t *testing.T) {
	if err := Setup("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
