package registry

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brk3/habitledger/pkg/habit"
	"github.com/google/go-cmp/cmp"
)

func newTestRegistry() (*Registry, *int) {
	r := New()
	n := 0
	r.newID = func() string {
		n++
		return fmt.Sprintf("h%d", n)
	}
	flushes := 0
	r.SetFlusher(func([]habit.Habit) { flushes++ })
	return r, &flushes
}

func TestAdd(t *testing.T) {
	r, flushes := newTestRegistry()

	h, ok := r.Add("  Drink water ")
	if !ok {
		t.Fatal("expected add to succeed")
	}
	if h.Name != "Drink water" || h.ID != "h1" {
		t.Fatalf("unexpected habit %+v", h)
	}
	if *flushes != 1 {
		t.Fatalf("expected 1 flush, got %d", *flushes)
	}
}

func TestAdd_RejectsBlankAndLongNames(t *testing.T) {
	r, flushes := newTestRegistry()

	for _, name := range []string{"", "   ", "\t\n", strings.Repeat("x", MaxNameLength+1)} {
		if _, ok := r.Add(name); ok {
			t.Errorf("expected %q to be rejected", name)
		}
	}
	if r.Len() != 0 || *flushes != 0 {
		t.Fatalf("rejections must not change state: len=%d flushes=%d", r.Len(), *flushes)
	}
}

func TestAdd_UniqueIDs(t *testing.T) {
	r := New()
	a, _ := r.Add("same")
	b, _ := r.Add("same")
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, both %s", a.ID)
	}
}

func TestRename(t *testing.T) {
	r, _ := newTestRegistry()
	h, _ := r.Add("Read")

	if !r.Rename(h.ID, "Read 20 min") {
		t.Fatal("rename failed")
	}
	if r.Rename(h.ID, "  ") {
		t.Fatal("blank rename should be rejected")
	}
	if r.Rename("missing", "x") {
		t.Fatal("unknown id should be rejected")
	}

	got, _ := r.Get(h.ID)
	if got.Name != "Read 20 min" {
		t.Fatalf("got %q", got.Name)
	}
}

func TestRemove_KeepsOrderAndIDs(t *testing.T) {
	r, _ := newTestRegistry()
	r.Add("A")
	b, _ := r.Add("B")
	r.Add("C")

	if !r.Remove(b.ID) {
		t.Fatal("remove failed")
	}
	if r.Remove(b.ID) {
		t.Fatal("second remove should report false")
	}

	want := []habit.Habit{{ID: "h1", Name: "A"}, {ID: "h3", Name: "C"}}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestList_IsCopy(t *testing.T) {
	r, _ := newTestRegistry()
	r.Add("A")
	l := r.List()
	l[0].Name = "changed"
	if got, _ := r.Get("h1"); got.Name != "A" {
		t.Fatalf("registry mutated through List: %q", got.Name)
	}
}

func TestSeed(t *testing.T) {
	r, flushes := newTestRegistry()
	r.Seed([]string{"Exercise", "", "Journal"})

	want := []habit.Habit{{ID: "h1", Name: "Exercise"}, {ID: "h2", Name: "Journal"}}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Fatalf("seed mismatch (-want +got):\n%s", diff)
	}
	if *flushes != 1 {
		t.Fatalf("expected a single flush, got %d", *flushes)
	}
}
