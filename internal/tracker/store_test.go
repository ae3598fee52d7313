package tracker

import (
	"context"
	"sync"

	"github.com/brk3/habitledger/internal/storage"
)

// memStore is an in-memory storage.Store with hooks for failure tests.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	getErr error
	setErr error
	// failOnce fails the next Set of that namespace/key with failErr.
	failOnce string
	failErr  error
	block    chan struct{}
	// entered receives once per Set call that is about to block.
	entered chan struct{}
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[namespace+"/"+key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	block, entered := m.block, m.entered
	m.mu.Unlock()
	if block != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		<-block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	if m.failOnce == namespace+"/"+key {
		m.failOnce = ""
		return m.failErr
	}
	m.data[namespace+"/"+key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) put(namespace, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[namespace+"/"+key] = []byte(value)
}

func (m *memStore) raw(namespace, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[namespace+"/"+key]
	return v, ok
}

func (m *memStore) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func (m *memStore) failSets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}

func (m *memStore) failNextSet(namespace, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOnce, m.failErr = namespace+"/"+key, err
}

var _ storage.Store = (*memStore)(nil)
