package object

import (
	"fmt"

	"gitlet/internal/safe"
)

// Store persists blobs and commits in the object safe.
type Store struct {
	safe *safe.Safe
}

func NewStore(s *safe.Safe) *Store {
	return &Store{safe: s}
}

func (s *Store) PutBlob(b *Blob) error {
	if _, err := s.safe.Put(safe.KindBlob, b.name, b.content); err != nil {
		return fmt.Errorf("storing blob %s: %w", b.name, err)
	}
	return nil
}

// Blob returns the bytes of a stored blob.
func (s *Store) Blob(id string) ([]byte, error) {
	return s.safe.Get(safe.KindBlob, id)
}

func (s *Store) PutCommit(c *Commit) error {
	if _, err := s.safe.Put(safe.KindCommit, "", c.encoded); err != nil {
		return fmt.Errorf("storing commit %s: %w", c.id, err)
	}
	return nil
}

// Commit loads and decodes a stored commit.
func (s *Store) Commit(id string) (*Commit, error) {
	data, err := s.safe.Get(safe.KindCommit, id)
	if err != nil {
		return nil, err
	}
	return DecodeCommit(data)
}

func (s *Store) HasCommit(id string) (bool, error) {
	return s.safe.Exists(safe.KindCommit, id)
}

// CommitIDs lists every stored commit id in ascending order.
func (s *Store) CommitIDs() ([]string, error) {
	return s.safe.List(safe.KindCommit)
}

// ResolveCommit expands an abbreviated commit id.
func (s *Store) ResolveCommit(prefix string) (string, error) {
	return s.safe.Resolve(safe.KindCommit, prefix)
}
