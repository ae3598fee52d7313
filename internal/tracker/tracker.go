// Package tracker owns the application state: the ledger, the habit registry
// and the view cursor. It loads them from storage once, serialises every
// command behind one mutex and pushes writes through a background queue.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/internal/engine"
	"github.com/brk3/habitledger/internal/ledger"
	"github.com/brk3/habitledger/internal/logger"
	"github.com/brk3/habitledger/internal/registry"
	"github.com/brk3/habitledger/internal/storage"
	"github.com/brk3/habitledger/pkg/habit"
)

type State int

const (
	StateUninitialized State = iota
	StateMigrating
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateMigrating:
		return "migrating"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	ErrNotReady      = errors.New("tracker: not ready")
	ErrAlreadyLoaded = errors.New("tracker: already loaded")
	ErrUnknownHabit  = errors.New("tracker: unknown habit")
	ErrInvalidName   = fmt.Errorf("tracker: habit name must be 1 to %d characters", registry.MaxNameLength)
)

type Options struct {
	Store storage.Store
	// Legacy is copied into Store once, on first load. Optional.
	Legacy        storage.Store
	WeekStart     datekey.Convention
	Location      *time.Location
	DefaultHabits []string
	BadgeCapacity int
	Now           func() time.Time
}

type Tracker struct {
	store    storage.Store
	legacy   storage.Store
	week     datekey.Convention
	loc      *time.Location
	defaults []string
	capacity int
	now      func() time.Time

	mu       sync.Mutex
	state    State
	ledger   *ledger.Ledger
	registry *registry.Registry
	cursor   time.Time
	w        *writer

	subs subscribers
}

func New(opts Options) *Tracker {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		store:    opts.Store,
		legacy:   opts.Legacy,
		week:     opts.WeekStart,
		loc:      opts.Location,
		defaults: opts.DefaultHabits,
		capacity: opts.BadgeCapacity,
		now:      opts.Now,
		ledger:   ledger.New(),
		registry: registry.New(),
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Today is the current calendar day in the tracker's location, at midnight.
func (t *Tracker) Today() time.Time {
	return datekey.Midnight(t.now().In(t.loc))
}

func (t *Tracker) Location() *time.Location {
	return t.loc
}

// Subscribe registers fn for change events and returns the function that
// removes it.
func (t *Tracker) Subscribe(fn func(Event)) func() {
	return t.subs.add(fn)
}

// Load runs the legacy migration, reads both namespaces and moves the tracker
// to StateReady. On failure the tracker returns to StateUninitialized and
// Load may be retried.
func (t *Tracker) Load(ctx context.Context) error {
	t.mu.Lock()
	switch t.state {
	case StateUninitialized:
	case StateClosed:
		t.mu.Unlock()
		return storage.ErrClosed
	default:
		t.mu.Unlock()
		return ErrAlreadyLoaded
	}
	t.state = StateMigrating
	t.mu.Unlock()

	habits, days, seeded, err := t.read(ctx)
	if err != nil {
		t.mu.Lock()
		if t.state == StateMigrating {
			t.state = StateUninitialized
		}
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateClosed {
		return storage.ErrClosed
	}

	t.registry.Load(habits)
	t.ledger.Load(days)
	t.w = newWriter(t.store, t.persisted, t.persistFailed)
	t.registry.SetFlusher(t.flushHabits)
	t.ledger.SetFlusher(t.flushLedger)
	if !seeded {
		t.registry.Seed(t.defaults)
		logger.Info("Seeded default habits", "count", t.registry.Len())
	}
	t.cursor = t.Today()
	t.state = StateReady

	registeredHabits.Set(float64(t.registry.Len()))
	ledgerDays.Set(float64(t.ledger.Len()))
	logger.Info("Tracker ready", "habits", t.registry.Len(), "days", t.ledger.Len(), "week_start", t.week.String())
	return nil
}

// read returns the stored habits and ledger. found is false when no habit
// list has ever been stored.
func (t *Tracker) read(ctx context.Context) (habits []habit.Habit, days map[string]habit.DayRecord, found bool, err error) {
	if t.legacy != nil {
		res, err := Migrate(ctx, t.legacy, t.store, t.now())
		if err != nil {
			return nil, nil, false, err
		}
		logger.Info("Legacy migration", "skipped", res.Skipped, "reason", res.Reason, "habits", res.Habits, "days", res.Days)
	}

	days = map[string]habit.DayRecord{}
	data, ok, err := t.store.Get(ctx, storage.NamespaceLedger, storage.KeyLedger)
	if err != nil {
		return nil, nil, false, fmt.Errorf("read ledger: %w", err)
	}
	if ok {
		if days, err = decodeLedger(data); err != nil {
			return nil, nil, false, err
		}
	}

	data, found, err = t.store.Get(ctx, storage.NamespaceHabits, storage.KeyHabits)
	if err != nil {
		return nil, nil, false, fmt.Errorf("read habits: %w", err)
	}
	if !found {
		return nil, days, false, nil
	}
	habits, names, err := decodeHabits(data)
	if err != nil {
		return nil, nil, false, err
	}
	if names != nil {
		// Bare names in the live store: convert in place like a migration
		// would and write the result back.
		habits, days = convertLegacy(names, days, newHabitID)
		if err := t.writeConverted(ctx, habits, days); err != nil {
			return nil, nil, false, err
		}
	}
	return habits, days, true, nil
}

func (t *Tracker) writeConverted(ctx context.Context, habits []habit.Habit, days map[string]habit.DayRecord) error {
	ledgerData, err := encodeLedger(days)
	if err != nil {
		return err
	}
	if err := t.store.Set(ctx, storage.NamespaceLedger, storage.KeyLedger, ledgerData); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	habitData, err := encodeHabits(habits)
	if err != nil {
		return err
	}
	if err := t.store.Set(ctx, storage.NamespaceHabits, storage.KeyHabits, habitData); err != nil {
		return fmt.Errorf("write habits: %w", err)
	}
	return nil
}

func (t *Tracker) flushHabits(habits []habit.Habit) {
	registeredHabits.Set(float64(len(habits)))
	data, err := encodeHabits(habits)
	if err != nil {
		logger.Error("Failed to encode habits", "error", err)
		return
	}
	t.w.enqueue(storage.NamespaceHabits, storage.KeyHabits, data)
}

func (t *Tracker) flushLedger(days map[string]habit.DayRecord) {
	ledgerDays.Set(float64(len(days)))
	data, err := encodeLedger(days)
	if err != nil {
		logger.Error("Failed to encode ledger", "error", err)
		return
	}
	t.w.enqueue(storage.NamespaceLedger, storage.KeyLedger, data)
}

func (t *Tracker) persisted(s slot) {
	persistWrites.WithLabelValues(s.namespace, "ok").Inc()
}

func (t *Tracker) persistFailed(s slot, err error) {
	persistWrites.WithLabelValues(s.namespace, "error").Inc()
	t.subs.publish(Event{Kind: EventPersistFailed, Namespace: s.namespace, Err: err})
}

// begin locks the tracker and checks it is ready. Callers must unlock.
func (t *Tracker) begin() error {
	t.mu.Lock()
	if t.state != StateReady {
		t.mu.Unlock()
		return ErrNotReady
	}
	return nil
}

func (t *Tracker) engine() *engine.Engine {
	return engine.New(t.ledger, t.registry.List(), t.week, t.loc)
}

func (t *Tracker) Habits() ([]habit.Habit, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}
	defer t.mu.Unlock()
	return t.registry.List(), nil
}

func (t *Tracker) AddHabit(name string) (habit.Habit, error) {
	if err := t.begin(); err != nil {
		return habit.Habit{}, err
	}
	h, ok := t.registry.Add(name)
	t.mu.Unlock()
	if !ok {
		return habit.Habit{}, ErrInvalidName
	}
	t.subs.publish(Event{Kind: EventHabitsChanged})
	return h, nil
}

func (t *Tracker) RenameHabit(id, name string) (habit.Habit, error) {
	if err := t.begin(); err != nil {
		return habit.Habit{}, err
	}
	if _, ok := t.registry.Get(id); !ok {
		t.mu.Unlock()
		return habit.Habit{}, ErrUnknownHabit
	}
	ok := t.registry.Rename(id, name)
	h, _ := t.registry.Get(id)
	t.mu.Unlock()
	if !ok {
		return habit.Habit{}, ErrInvalidName
	}
	t.subs.publish(Event{Kind: EventHabitsChanged})
	return h, nil
}

// RemoveHabit drops the habit from the list. Its history stays in the ledger.
func (t *Tracker) RemoveHabit(id string) error {
	if err := t.begin(); err != nil {
		return err
	}
	ok := t.registry.Remove(id)
	t.mu.Unlock()
	if !ok {
		return ErrUnknownHabit
	}
	t.subs.publish(Event{Kind: EventHabitsChanged})
	return nil
}

// ToggleHabit flips one habit on date and returns the new value.
func (t *Tracker) ToggleHabit(date time.Time, id string) (bool, error) {
	if err := t.begin(); err != nil {
		return false, err
	}
	if _, ok := t.registry.Get(id); !ok {
		t.mu.Unlock()
		return false, ErrUnknownHabit
	}
	key := datekey.Key(date)
	state := t.ledger.ToggleHabit(key, id)
	t.mu.Unlock()

	habitToggles.WithLabelValues(fmt.Sprint(state)).Inc()
	t.subs.publish(Event{Kind: EventDayChanged, Date: key})
	return state, nil
}

func (t *Tracker) SetMood(date time.Time, m habit.Mood) error {
	if err := t.begin(); err != nil {
		return err
	}
	key := datekey.Key(date)
	err := t.ledger.SetMood(key, m)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.subs.publish(Event{Kind: EventDayChanged, Date: key})
	return nil
}

func (t *Tracker) SetNotes(date time.Time, text string) error {
	if err := t.begin(); err != nil {
		return err
	}
	key := datekey.Key(date)
	t.ledger.SetNotes(key, text)
	t.mu.Unlock()
	t.subs.publish(Event{Kind: EventDayChanged, Date: key})
	return nil
}

func (t *Tracker) ResetDay(date time.Time) error {
	if err := t.begin(); err != nil {
		return err
	}
	key := datekey.Key(date)
	t.ledger.ResetDay(key)
	t.mu.Unlock()
	t.subs.publish(Event{Kind: EventDayChanged, Date: key})
	return nil
}

// ResetAll wipes every day record. Habits are kept.
func (t *Tracker) ResetAll() error {
	if err := t.begin(); err != nil {
		return err
	}
	t.ledger.WipeAll()
	t.mu.Unlock()
	logger.Warn("Ledger wiped")
	t.subs.publish(Event{Kind: EventLedgerWiped})
	return nil
}

func (t *Tracker) Day(date time.Time) (habit.DaySummary, error) {
	if err := t.begin(); err != nil {
		return habit.DaySummary{}, err
	}
	defer t.mu.Unlock()
	return t.engine().Summary(date), nil
}

func (t *Tracker) Week(anchor time.Time) (habit.WeeklyStats, error) {
	if err := t.begin(); err != nil {
		return habit.WeeklyStats{}, err
	}
	defer t.mu.Unlock()
	return t.engine().Weekly(anchor), nil
}

// Month includes the month's badge as of the view cursor.
func (t *Tracker) Month(year int, month time.Month) (habit.MonthlyStats, error) {
	if err := t.begin(); err != nil {
		return habit.MonthlyStats{}, err
	}
	defer t.mu.Unlock()
	e := t.engine()
	stats := e.Monthly(year, month)
	stats.Badge = e.MonthlyBadge(year, month, t.cursor)
	return stats, nil
}

func (t *Tracker) Badges() (habit.BadgeTally, error) {
	if err := t.begin(); err != nil {
		return habit.BadgeTally{}, err
	}
	defer t.mu.Unlock()
	return t.engine().TotalBadges(t.cursor, t.capacity), nil
}

func (t *Tracker) Cursor() (time.Time, error) {
	if err := t.begin(); err != nil {
		return time.Time{}, err
	}
	defer t.mu.Unlock()
	return t.cursor, nil
}

// Navigate moves the cursor by days calendar days.
func (t *Tracker) Navigate(days int) (time.Time, error) {
	if err := t.begin(); err != nil {
		return time.Time{}, err
	}
	return t.moveCursor(datekey.AddDays(t.cursor, days)), nil
}

func (t *Tracker) JumpTo(date time.Time) (time.Time, error) {
	if err := t.begin(); err != nil {
		return time.Time{}, err
	}
	return t.moveCursor(datekey.Midnight(date)), nil
}

func (t *Tracker) JumpToday() (time.Time, error) {
	if err := t.begin(); err != nil {
		return time.Time{}, err
	}
	return t.moveCursor(t.Today()), nil
}

// moveCursor expects t.mu held and releases it.
func (t *Tracker) moveCursor(to time.Time) time.Time {
	t.cursor = to
	t.mu.Unlock()
	t.subs.publish(Event{Kind: EventCursorMoved, Date: datekey.Key(to)})
	return to
}

// Flush waits until every write queued so far has reached storage or failed.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	w := t.w
	t.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.flush(ctx)
}

// Close drains pending writes and stops the write queue. The store itself is
// left open for the caller to close.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	w := t.w
	t.state = StateClosed
	t.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.close(ctx)
}
