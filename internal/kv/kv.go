// ABOUTME: Badger key-value store for fetched payloads
// ABOUTME: Entries expire after a TTL; implements the cache store interfaces

package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/harper/vkattach/internal/cache"
)

// Store wraps a badger database.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

var (
	_ cache.Store  = (*Store)(nil)
	_ cache.Lister  = (*Store)(nil)
	_ cache.Deleter = (*Store)(nil)
)

// Open opens or creates a store in dir. A zero ttl keeps entries forever.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create kv directory: %w", err)
	}
	return open(badger.DefaultOptions(dir), ttl)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory(ttl time.Duration) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), ttl)
}

func open(opts badger.Options, ttl time.Duration) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open kv store: %w", err)
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value stored under key, or cache.ErrMiss.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, cache.ErrMiss
	}
	return value, err
}

// Put stores value under key with the store's TTL.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key, or returns cache.ErrMiss when it is absent.
func (s *Store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return cache.ErrMiss
			}
			return err
		}
		return txn.Delete([]byte(key))
	})
}

// Entries lists live entries whose key starts with prefix.
func (s *Store) Entries(_ context.Context, prefix string) ([]cache.Entry, error) {
	var entries []cache.Entry
	p := []byte(prefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			entries = append(entries, cache.Entry{
				Key:      string(item.KeyCopy(nil)),
				Size:     int(item.ValueSize()),
				StoredAt: storedAt(item.ExpiresAt(), s.ttl),
			})
		}
		return nil
	})
	return entries, err
}

// storedAt recovers the write time from an entry's expiry.
func storedAt(expiresAt uint64, ttl time.Duration) time.Time {
	if expiresAt == 0 || ttl <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(expiresAt), 0).Add(-ttl)
}
