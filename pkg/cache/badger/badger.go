// Package badger implements the expiring cache on an embedded BadgerDB
// instance. Entries carry a TTL and expire server-side; a miss and an expired
// entry are indistinguishable to callers.
package badger

import (
	"context"
	"errors"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/doculens/backend/pkg/logger"
)

// Store is a badger-backed cache.
type Store struct {
	db *badgerdb.DB
}

// Params configures the badger cache.
type Params struct {
	// Path is the directory for the badger files. Ignored when InMemory is
	// set.
	Path string
	// InMemory keeps all data in RAM, used by tests.
	InMemory bool
}

// Open opens the cache database. Badger's own logging is disabled; cache
// failures are reported through the application logger at the call sites.
func Open(params Params) (*Store, error) {
	opts := badgerdb.DefaultOptions(params.Path).WithLogger(nil)
	if params.InMemory {
		opts = opts.WithInMemory(true)
	}
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get returns the cached value for key, or a miss when the key is absent,
// expired, or the read fails.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			logger.Error("[Cache] Get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return value, true
}

// Set writes value under key with the given TTL. Returns false on failure
// without raising.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		entry := badgerdb.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		logger.Error("[Cache] Set failed", "key", key, "err", err)
		return false
	}
	return true
}

// Delete removes key from the cache.
func (s *Store) Delete(ctx context.Context, key string) bool {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		logger.Error("[Cache] Delete failed", "key", key, "err", err)
		return false
	}
	return true
}

// DeletePrefix removes every key starting with prefix and returns how many
// entries were dropped.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) int {
	deleted := 0
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		logger.Error("[Cache] DeletePrefix failed", "prefix", prefix, "err", err)
		return deleted
	}
	return deleted
}

// Close releases the badger database.
func (s *Store) Close() error {
	return s.db.Close()
}
