// Package storage defines the key-value contract the tracker persists
// through. Values are opaque JSON documents. Set overwrites the whole value.
package storage

import (
	"context"
	"errors"
)

const (
	NamespaceHabits = "habits"
	NamespaceLedger = "state"
	NamespaceMeta   = "meta"
	NamespaceAuth   = "auth"

	KeyHabits   = "habits"
	KeyLedger   = "tracker"
	KeyMigrated = "migrated"
	KeyAPIKeys  = "api_keys"
)

var ErrClosed = errors.New("storage: store is closed")

type Store interface {
	// Get reports found=false, with no error, when the key has never been set.
	Get(ctx context.Context, namespace, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	Close() error
}
