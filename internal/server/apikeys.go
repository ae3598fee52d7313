package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/brk3/habitledger/internal/storage"
)

var errNoKeyStore = errors.New("api keys need a store")

// hashAPIKey returns the hex SHA-256 under which a key is stored. Raw keys
// are shown once, at generation, and never persisted.
func hashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

func truncateHash(hash string) string {
	const keep = 16
	if len(hash) <= keep {
		return hash
	}
	return hash[:keep] + "..."
}

type apiKeyRecord struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type APIKeyInfo struct {
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// apiKeyStore keeps hashed API keys as one JSON document in the auth
// namespace. Keys are few, so the whole map is rewritten on every change.
type apiKeyStore struct {
	mu    sync.Mutex
	store storage.Store
}

func newAPIKeyStore(store storage.Store) *apiKeyStore {
	return &apiKeyStore{store: store}
}

func (k *apiKeyStore) load(ctx context.Context) (map[string]apiKeyRecord, error) {
	if k.store == nil {
		return nil, errNoKeyStore
	}
	out := map[string]apiKeyRecord{}
	data, found, err := k.store.Get(ctx, storage.NamespaceAuth, storage.KeyAPIKeys)
	if err != nil {
		return nil, fmt.Errorf("read api keys: %w", err)
	}
	if !found {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode api keys: %w", err)
	}
	return out, nil
}

func (k *apiKeyStore) save(ctx context.Context, keys map[string]apiKeyRecord) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := k.store.Set(ctx, storage.NamespaceAuth, storage.KeyAPIKeys, data); err != nil {
		return fmt.Errorf("write api keys: %w", err)
	}
	return nil
}

func (k *apiKeyStore) Put(ctx context.Context, keyHash, userID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys, err := k.load(ctx)
	if err != nil {
		return err
	}
	keys[keyHash] = apiKeyRecord{UserID: userID, CreatedAt: time.Now().UTC()}
	return k.save(ctx, keys)
}

func (k *apiKeyStore) Lookup(ctx context.Context, keyHash string) (userID string, found bool, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys, err := k.load(ctx)
	if err != nil {
		return "", false, err
	}
	rec, found := keys[keyHash]
	return rec.UserID, found, nil
}

// ListForUser returns the user's keys, newest first, with hashes truncated.
func (k *apiKeyStore) ListForUser(ctx context.Context, userID string) ([]APIKeyInfo, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	keys, err := k.load(ctx)
	if err != nil {
		return nil, err
	}
	out := []APIKeyInfo{}
	for hash, rec := range keys {
		if rec.UserID == userID {
			out = append(out, APIKeyInfo{Hash: truncateHash(hash), CreatedAt: rec.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
