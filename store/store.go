// ABOUTME: Account-scoped local replica store backed by BadgerDB
// ABOUTME: Whole-collection reads/writes with best-effort, never-fatal persistence
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	badger "github.com/dgraph-io/badger/v3"

	"github.com/fieldfolio/fieldfolio/models"
)

// Store persists the full entity replica for the current account. Every key
// is namespaced by account id so one account can never observe another's
// data. All writes are best-effort: a failed persist is logged and swallowed
// so the calling operation still completes against the in-memory result.
type Store struct {
	mu      sync.RWMutex
	db      *badger.DB
	account string
	logger  *log.Logger
}

// Open opens (or creates) the replica database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open replica store: %w", err)
	}
	return &Store{db: db, logger: log.Default()}, nil
}

// OpenInMemory opens a non-durable store, used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &Store{db: db, logger: log.Default()}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SetAccount switches the scoping key. Called on login/logout; an empty id
// means no authenticated account, which makes reads empty and writes no-ops.
func (s *Store) SetAccount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = id
}

// Account returns the current scoping account id.
func (s *Store) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

func (s *Store) collectionKey(kind models.Kind) []byte {
	return []byte("acct:" + s.account + ":" + string(kind))
}

func (s *Store) settingKey(name string) []byte {
	return []byte("acct:" + s.account + ":setting:" + name)
}

// get returns the raw value for key, or nil when absent or unreadable.
func (s *Store) get(key []byte) []byte {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil && err != badger.ErrKeyNotFound {
		s.logger.Warn("replica read failed", "key", string(key), "err", err)
	}
	return out
}

// set writes a value best-effort, logging on failure instead of erroring.
func (s *Store) set(key, value []byte) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		s.logger.Warn("replica write failed, change not persisted", "key", string(key), "err", err)
	}
}

// Invalidate drops the cached collection for kind, forcing the next local
// read to start from empty. Called after a successful remote mutation so a
// forced-local read never serves stale pre-mutation data.
func (s *Store) Invalidate(kind models.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.collectionKey(kind))
	})
	if err != nil {
		s.logger.Warn("replica invalidate failed", "kind", kind, "err", err)
	}
}

// Reset wipes all keys for the current account (logout path). A prefix scan
// covers every collection and setting, the activity trail included.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		return
	}
	prefix := []byte("acct:" + s.account + ":")
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("replica reset failed", "err", err)
	}
}

// List reads the whole collection for kind. Missing or corrupted data yields
// an empty slice, never an error.
func List[T any](s *Store, kind models.Kind) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == "" {
		return []T{}
	}
	raw := s.get(s.collectionKey(kind))
	if len(raw) == 0 {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("replica data corrupted, treating as empty", "kind", kind, "err", err)
		return []T{}
	}
	return items
}

// Put replaces the whole collection for kind. Refused (with a log line, not
// an error) when no account is authenticated.
func Put[T any](s *Store, kind models.Kind, items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		s.logger.Warn("replica write refused: no authenticated account", "kind", kind)
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("replica marshal failed", "kind", kind, "err", err)
		return
	}
	s.set(s.collectionKey(kind), raw)
}

// GetSetting reads a singleton settings object by name.
func GetSetting[T any](s *Store, name string) (T, bool) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == "" {
		return zero, false
	}
	raw := s.get(s.settingKey(name))
	if len(raw) == 0 {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("setting data corrupted", "name", name, "err", err)
		return zero, false
	}
	return v, true
}

// PutSetting upserts a singleton settings object.
func PutSetting[T any](s *Store, name string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == "" {
		s.logger.Warn("setting write refused: no authenticated account", "name", name)
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("setting marshal failed", "name", name, "err", err)
		return
	}
	s.set(s.settingKey(name), raw)
}
