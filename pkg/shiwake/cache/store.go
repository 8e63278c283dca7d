// Package cache stores extracted file metadata in a Badger database so that
// repeated runs skip the expensive extraction step (EXIF parsing in
// particular). Entries are validated against the file's current size and
// modification time before use; a stale entry is treated as a miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/shiwake/shiwake/pkg/shiwake/metadata"
)

// ErrNotFound is returned when no entry exists for a path.
var ErrNotFound = errors.New("cache entry not found")

// Entry is the cached record for one file. Size and ModTimeNano identify the
// file state the metadata was extracted from.
type Entry struct {
	Size        int64                     `json:"size"`
	ModTimeNano int64                     `json:"mtime_nano"`
	Fields      map[string]metadata.Value `json:"fields"`
}

// Store wraps Badger for metadata cache operations.
type Store struct {
	db *badger.DB
}

// Open opens or creates a cache store at the given directory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logging is noise here

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening metadata cache at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get retrieves the entry for an absolute path.
func (s *Store) Get(path string) (*Entry, error) {
	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(data []byte) error {
			return json.Unmarshal(data, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores the entry for an absolute path.
func (s *Store) Put(path string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), data)
	})
}

// Delete removes the entry for a path. Deleting a missing entry is not an
// error.
func (s *Store) Delete(path string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(path))
	})
}
