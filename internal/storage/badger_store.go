// internal/storage/badger_store.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

var ErrNotFound = errors.New("entry not found")

// BadgerStore keeps JSON values under "<prefix>:<id>" keys of a shared
// badger database. Several stores with distinct prefixes share one DB.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{
		db:     db,
		prefix: prefix,
	}
}

func (s *BadgerStore) makeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", s.prefix, id))
}

func (s *BadgerStore) keyPrefix() []byte {
	return []byte(s.prefix + ":")
}

func (s *BadgerStore) stripPrefix(key []byte) string {
	return strings.TrimPrefix(string(key), s.prefix+":")
}

func encode(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshaling entry: %w", err)
	}
	return data, nil
}

// Put stores value under id, replacing any previous value. A nil value
// stores a key with no payload, which is how sets are kept.
func (s *BadgerStore) Put(id string, value any) error {
	if id == "" {
		return fmt.Errorf("entry id cannot be empty")
	}

	data, err := encode(value)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.makeKey(id), data)
	})
}

// Get decodes the value stored under id into value. It returns ErrNotFound
// when the key is absent. A nil value only checks presence.
func (s *BadgerStore) Get(id string, value any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(id))
		if err != nil {
			return err
		}
		if value == nil {
			return nil
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, value)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func (s *BadgerStore) Has(id string) (bool, error) {
	err := s.Get(id, nil)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes id. Deleting an absent id is not an error.
func (s *BadgerStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.makeKey(id))
	})
}

// Keys returns every id in the store in ascending byte order.
func (s *BadgerStore) Keys() ([]string, error) {
	return s.KeysWithPrefix("")
}

// KeysWithPrefix returns the ids starting with idPrefix, ascending.
func (s *BadgerStore) KeysWithPrefix(idPrefix string) ([]string, error) {
	var ids []string

	prefix := append(s.keyPrefix(), idPrefix...)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, s.stripPrefix(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s entries: %w", s.prefix, err)
	}
	return ids, nil
}

// Each calls fn with every id and raw JSON value in ascending order.
func (s *BadgerStore) Each(fn func(id string, raw []byte) error) error {
	prefix := s.keyPrefix()
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := s.stripPrefix(item.Key())
			err := item.Value(func(val []byte) error {
				return fn(id, val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace atomically swaps the whole content of the store for entries.
func (s *BadgerStore) Replace(entries map[string]any) error {
	return s.db.Update(func(txn *badger.Txn) error {
		prefix := s.keyPrefix()
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		var stale [][]byte
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for id, value := range entries {
			data, err := encode(value)
			if err != nil {
				return err
			}
			if err := txn.Set(s.makeKey(id), data); err != nil {
				return fmt.Errorf("storing %s: %w", id, err)
			}
		}
		return nil
	})
}
