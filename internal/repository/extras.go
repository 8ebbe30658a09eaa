// internal/repository/extras.go
package repository

import (
	stderrors "errors"
	"fmt"

	"gitlet/internal/config"
	"gitlet/internal/diff"
	"gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/safe"
)

// DiffContext is the number of unchanged lines shown around a change.
const DiffContext = 3

// FileDiff compares the HEAD version of one file with its working copy.
type FileDiff struct {
	Name   string
	Result *diff.DiffResult
}

// Diff compares working copies with HEAD. With no names it covers every
// file tracked by HEAD or staged for addition. Identical files are
// omitted.
func (r *Repository) Diff(names ...string) ([]FileDiff, error) {
	head, err := r.head()
	if err != nil {
		return nil, err
	}
	tracked := head.Files()

	if len(names) == 0 {
		area, err := r.stage.Load()
		if err != nil {
			return nil, err
		}
		names = object.Union(tracked, area.Added())
	}

	engine := diff.NewEngine(DiffContext)
	var diffs []FileDiff

	for _, name := range names {
		blob, inHead := tracked[name]
		exists := r.work.Exists(name)
		if !inHead && !exists {
			return nil, errors.NotFound(MsgFileNotFound)
		}

		old, err := r.blobOrEmpty(blob)
		if err != nil {
			return nil, err
		}
		var current []byte
		if exists {
			if current, err = r.work.Read(name); err != nil {
				return nil, fmt.Errorf("reading %s: %w", name, err)
			}
		}

		result := engine.Diff(old, current)
		if result.Empty() {
			continue
		}
		diffs = append(diffs, FileDiff{Name: name, Result: result})
	}
	return diffs, nil
}

// Stats summarises the repository contents.
type Stats struct {
	RepoID   string
	Blobs    safe.Stats
	Commits  safe.Stats
	Branches int
}

func (r *Repository) Stats() (*Stats, error) {
	blobs, err := r.safe.Stats(safe.KindBlob)
	if err != nil {
		return nil, fmt.Errorf("collecting blob stats: %w", err)
	}
	commits, err := r.safe.Stats(safe.KindCommit)
	if err != nil {
		return nil, fmt.Errorf("collecting commit stats: %w", err)
	}
	branches, err := r.refs.Branches()
	if err != nil {
		return nil, err
	}

	return &Stats{
		RepoID:   r.settings.ID(),
		Blobs:    blobs,
		Commits:  commits,
		Branches: len(branches),
	}, nil
}

// ConfigGet reads a "section.name" key of the repository config.
func (r *Repository) ConfigGet(key string) (string, error) {
	value, ok, err := r.settings.Get(key)
	if stderrors.Is(err, config.ErrInvalidKey) {
		return "", errors.PreconditionFailed(err.Error())
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.NotFound(fmt.Sprintf("No config value for %s.", key))
	}
	return value, nil
}

// ConfigSet writes a "section.name" key of the repository config.
func (r *Repository) ConfigSet(key, value string) error {
	if key == "core.id" {
		return errors.PreconditionFailed("The repository id cannot be changed.")
	}
	err := r.settings.Set(key, value)
	if stderrors.Is(err, config.ErrInvalidKey) {
		return errors.PreconditionFailed(err.Error())
	}
	return err
}
