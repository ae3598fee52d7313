package tracker

import "sync"

type EventKind int

const (
	EventHabitsChanged EventKind = iota + 1
	EventDayChanged
	EventLedgerWiped
	EventCursorMoved
	EventPersistFailed
)

func (k EventKind) String() string {
	switch k {
	case EventHabitsChanged:
		return "habits_changed"
	case EventDayChanged:
		return "day_changed"
	case EventLedgerWiped:
		return "ledger_wiped"
	case EventCursorMoved:
		return "cursor_moved"
	case EventPersistFailed:
		return "persist_failed"
	}
	return "unknown"
}

// Event tells subscribers to re-render. Date is set for day and cursor
// events; Err and Namespace for persistence failures, which are not fatal:
// the in-memory state stays authoritative.
type Event struct {
	Kind      EventKind
	Date      string
	Namespace string
	Err       error
}

type subscribers struct {
	mu   sync.RWMutex
	next int
	fns  map[int]func(Event)
}

// add registers fn and returns a function that removes it. fn may be called
// from the persistence goroutine and must not block.
func (s *subscribers) add(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = map[int]func(Event){}
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) publish(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}
