package cmd

import (
	"fmt"

	"github.com/brk3/habitledger/internal/config"
	"github.com/brk3/habitledger/internal/storage"
	"github.com/brk3/habitledger/internal/storage/bolt"
	"github.com/brk3/habitledger/internal/storage/sqlite"
)

func openStore(c *config.Config) (storage.Store, error) {
	switch c.Storage.Backend {
	case config.BackendBolt:
		s, err := bolt.Open(c.Storage.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(c.Storage.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
}
