package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWriter_LastWriteWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	store.block = gate
	store.entered = entered

	w := newWriter(store, nil, nil)
	w.enqueue("state", "tracker", []byte(`1`))
	<-entered
	w.enqueue("state", "tracker", []byte(`2`))
	w.enqueue("state", "tracker", []byte(`3`))

	store.mu.Lock()
	store.block = nil
	store.mu.Unlock()
	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.flush(ctx))
	require.NoError(t, w.close(ctx))

	v, ok := store.raw("state", "tracker")
	require.True(t, ok)
	assert.Equal(t, `3`, string(v))
	assert.Equal(t, 2, store.setCount())
}

func TestWriter_SlotsKeepOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	var mu sync.Mutex
	var seen []string
	w := newWriter(store, func(s slot) {
		mu.Lock()
		seen = append(seen, s.namespace)
		mu.Unlock()
	}, nil)

	w.enqueue("habits", "habits", []byte(`[]`))
	w.enqueue("state", "tracker", []byte(`{}`))
	require.NoError(t, w.close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"habits", "state"}, seen)
}

func TestWriter_ReportsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newMemStore()
	boom := errors.New("disk full")
	store.failSets(boom)

	var got error
	w := newWriter(store, nil, func(_ slot, err error) { got = err })
	w.enqueue("state", "tracker", []byte(`{}`))
	require.NoError(t, w.flush(context.Background()))
	require.NoError(t, w.close(context.Background()))
	assert.ErrorIs(t, got, boom)
}

func TestWriter_FlushAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newWriter(newMemStore(), nil, nil)
	require.NoError(t, w.close(context.Background()))
	assert.NoError(t, w.flush(context.Background()))
	assert.NoError(t, w.close(context.Background()))
}
