package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/brk3/habitledger/internal/logger"
	"github.com/brk3/habitledger/internal/storage"
)

const writeTimeout = 10 * time.Second

type slot struct {
	namespace string
	key       string
}

// writer funnels every storage write through one goroutine. Writes to the
// same slot that are still queued collapse into the newest value, so the
// last write always wins.
type writer struct {
	store   storage.Store
	onError func(slot, error)
	onWrite func(slot)

	mu       sync.Mutex
	pending  map[slot][]byte
	order    []slot
	barriers []chan struct{}

	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func newWriter(store storage.Store, onWrite func(slot), onError func(slot, error)) *writer {
	w := &writer{
		store:   store,
		onWrite: onWrite,
		onError: onError,
		pending: map[slot][]byte{},
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) enqueue(namespace, key string, value []byte) {
	s := slot{namespace: namespace, key: key}
	w.mu.Lock()
	if _, queued := w.pending[s]; !queued {
		w.order = append(w.order, s)
	}
	w.pending[s] = value
	w.mu.Unlock()
	w.signal()
}

func (w *writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// flush waits until everything queued before the call has been attempted.
func (w *writer) flush(ctx context.Context) error {
	b := make(chan struct{})
	w.mu.Lock()
	w.barriers = append(w.barriers, b)
	w.mu.Unlock()
	w.signal()

	select {
	case <-b:
		return nil
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drains the queue and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	w.stopped.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			barriers := w.barriers
			w.barriers = nil
			w.mu.Unlock()
			for _, b := range barriers {
				close(b)
			}
			return
		}
		s := w.order[0]
		w.order = w.order[1:]
		value := w.pending[s]
		delete(w.pending, s)
		w.mu.Unlock()

		w.write(s, value)
	}
}

func (w *writer) write(s slot, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.store.Set(ctx, s.namespace, s.key, value); err != nil {
		logger.Error("Failed to persist", "namespace", s.namespace, "key", s.key, "error", err)
		if w.onError != nil {
			w.onError(s, err)
		}
		return
	}
	logger.Debug("Persisted", "namespace", s.namespace, "key", s.key, "bytes", len(value))
	if w.onWrite != nil {
		w.onWrite(s)
	}
}
