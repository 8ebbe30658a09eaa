// internal/staging/store.go
package staging

import (
	"encoding/json"
	"fmt"
	"strings"

	"gitlet/internal/storage"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	addPrefix    = "add/"
	removePrefix = "rm/"
)

type addEntry struct {
	Name string `json:"name"`
	Blob string `json:"blob"`
}

// Store persists the staging area as one badger entry per staged name.
type Store struct {
	entries *storage.BadgerStore
	logger  *zap.Logger
}

func NewStore(db *badger.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entries: storage.NewBadgerStore(db, "stage"),
		logger:  logger,
	}
}

// Load reads the persisted staging area. An empty database yields an empty
// area.
func (s *Store) Load() (*Area, error) {
	area := NewArea()
	err := s.entries.Each(func(id string, raw []byte) error {
		switch {
		case strings.HasPrefix(id, addPrefix):
			var e addEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				return fmt.Errorf("decoding staged file %s: %w", id, err)
			}
			area.add[e.Name] = e.Blob
		case strings.HasPrefix(id, removePrefix):
			area.remove[strings.TrimPrefix(id, removePrefix)] = struct{}{}
		default:
			s.logger.Warn("unknown staging entry", zap.String("key", id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading staging area: %w", err)
	}
	return area, nil
}

// Save replaces the persisted staging area with area in one transaction.
func (s *Store) Save(area *Area) error {
	entries := make(map[string]any, len(area.add)+len(area.remove))
	for name, blob := range area.add {
		entries[addPrefix+name] = addEntry{Name: name, Blob: blob}
	}
	for name := range area.remove {
		entries[removePrefix+name] = nil
	}

	if err := s.entries.Replace(entries); err != nil {
		return fmt.Errorf("saving staging area: %w", err)
	}
	s.logger.Debug("staging area saved",
		zap.Int("added", len(area.add)),
		zap.Int("removed", len(area.remove)))
	return nil
}
