package flatfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brk3/habitledger/internal/storage"
)

func TestGet_MissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "legacy.json"))
	_, found, err := s.Get(context.Background(), "", "habits")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestReadsLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `{"habits":["Drink water","Exercise"],"tracker":{"2026-01-03":{"habits":{"0-6":true},"mood":"3","notes":""}}}`
	if err := os.WriteFile(path, []byte(legacy), 0600); err != nil {
		t.Fatal(err)
	}

	s := Open(path)
	v, found, err := s.Get(context.Background(), storage.NamespaceHabits, storage.KeyHabits)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if string(v) != `["Drink water","Exercise"]` {
		t.Fatalf("got %s", v)
	}

	_, found, _ = s.Get(context.Background(), storage.NamespaceLedger, storage.KeyLedger)
	if !found {
		t.Fatal("expected tracker item")
	}
}

func TestGet_UnwrapsStringEncodedItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	dump := `{"habits":"[\"Read\",\"Walk\"]","tracker":"{\"2025-06-15\":{\"habits\":{\"0-0\":true}}}","theme":"dark"}`
	if err := os.WriteFile(path, []byte(dump), 0600); err != nil {
		t.Fatal(err)
	}
	s := Open(path)
	ctx := context.Background()

	for key, want := range map[string]string{
		"habits":  `["Read","Walk"]`,
		"tracker": `{"2025-06-15":{"habits":{"0-0":true}}}`,
		"theme":   `"dark"`,
	} {
		v, found, err := s.Get(ctx, "", key)
		if err != nil || !found {
			t.Fatalf("%s: found=%v err=%v", key, found, err)
		}
		if string(v) != want {
			t.Errorf("%s: got %s, want %s", key, v, want)
		}
	}
}

func TestSet_PreservesOtherItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	s := Open(path)
	ctx := context.Background()

	if err := s.Set(ctx, "", "habits", []byte(`["A"]`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "", "tracker", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	v, found, err := s.Get(ctx, "", "habits")
	if err != nil || !found || string(v) != `["A"]` {
		t.Fatalf("got %s found=%v err=%v", v, found, err)
	}
}

func TestSet_RejectsInvalidJSON(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "legacy.json"))
	if err := s.Set(context.Background(), "", "habits", []byte(`{`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestNullItemIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	os.WriteFile(path, []byte(`{"habits":null}`), 0600)

	_, found, err := Open(path).Get(context.Background(), "", "habits")
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
}

func TestClosed(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "legacy.json"))
	s.Close()
	if _, _, err := s.Get(context.Background(), "", "habits"); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
