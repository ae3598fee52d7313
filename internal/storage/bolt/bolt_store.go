package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitledger/internal/storage"
	"go.etcd.io/bbolt"
)

const rootBucket = "habitledger"

// Store keeps each namespace in its own bucket under a single root bucket.
type Store struct {
	db *bbolt.DB
}

// Open fails after a second instead of blocking forever when another process
// holds the file lock.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db %s: %w", path, err)
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(rootBucket)).Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		// bbolt values are only valid inside the transaction.
		if v := bucket.Get([]byte(key)); v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return out, out != nil, nil
}

func (s *Store) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket([]byte(rootBucket)).CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
