// Package flatfile is the legacy backend: a single JSON object whose
// top-level members are the stored items ("habits", "tracker"), the way the
// first version of the tracker kept them. Namespaces are ignored; items are
// addressed by key alone.
package flatfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/brk3/habitledger/internal/fsutil"
	"github.com/brk3/habitledger/internal/storage"
)

type Store struct {
	path   string
	mu     sync.Mutex
	closed bool
}

// Open does not create the file; a missing file reads as empty.
func Open(path string) *Store {
	return &Store{path: path}
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	items := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, _, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, storage.ErrClosed
	}

	items, err := s.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := items[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false, nil
	}
	return unwrapItem(v), true, nil
}

// unwrapItem undoes one level of string encoding. Browser storage dumps keep
// every item as a string holding JSON, e.g. {"habits":"[\"Read\"]"}. Only
// strings holding an object or array are unwrapped.
func unwrapItem(v json.RawMessage) []byte {
	var inner string
	if err := json.Unmarshal(v, &inner); err != nil {
		return v
	}
	trimmed := bytes.TrimSpace([]byte(inner))
	if len(trimmed) == 0 || (trimmed[0] != '[' && trimmed[0] != '{') || !json.Valid(trimmed) {
		return v
	}
	return trimmed
}

// Set rewrites the whole file. value must be valid JSON.
func (s *Store) Set(ctx context.Context, _, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("set %s: value is not valid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrClosed
	}

	items, err := s.read()
	if err != nil {
		return err
	}
	items[key] = json.RawMessage(value)
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", s.path, err)
	}
	return fsutil.WriteFileAtomic(s.path, data, 0600)
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ storage.Store = (*Store)(nil)
