// internal/repository/status.go
package repository

import (
	"fmt"
	"slices"
	"strings"

	"gitlet/shared/types"
	"gitlet/shared/utils"

	"go.uber.org/zap"
)

// Status reports branches, staged changes, unstaged modifications and
// untracked files.
func (r *Repository) Status() (*shared.Status, error) {
	head, err := r.head()
	if err != nil {
		return nil, err
	}
	area, err := r.stage.Load()
	if err != nil {
		return nil, err
	}

	branches, err := r.branches()
	if err != nil {
		return nil, err
	}

	working, err := r.workingHashes()
	if err != nil {
		return nil, err
	}

	tracked := head.Files()
	added := area.Added()

	status := &shared.Status{
		Branches:  branches,
		Staged:    added.Names(),
		Removed:   area.Removed(),
		Unstaged:  []shared.Change{},
		Untracked: []string{},
	}

	for _, name := range tracked.Names() {
		if area.IsRemoved(name) {
			continue
		}
		if _, staged := added[name]; staged {
			continue
		}
		status.Unstaged = appendChange(status.Unstaged, name, tracked[name], working)
	}
	for _, name := range added.Names() {
		status.Unstaged = appendChange(status.Unstaged, name, added[name], working)
	}
	slices.SortFunc(status.Unstaged, func(a, b shared.Change) int {
		return strings.Compare(a.Path, b.Path)
	})

	for _, name := range utils.SortedKeys(working) {
		if _, staged := added[name]; staged {
			continue
		}
		if head.Tracks(name) && !area.IsRemoved(name) {
			continue
		}
		status.Untracked = append(status.Untracked, name)
	}

	return status, nil
}

// appendChange records name when its working copy is missing or differs
// from the expected blob.
func appendChange(changes []shared.Change, name, expected string, working map[string]string) []shared.Change {
	current, ok := working[name]
	switch {
	case !ok:
		return append(changes, shared.Change{Path: name, Type: shared.ChangeDeleted})
	case current != expected:
		return append(changes, shared.Change{Path: name, Type: shared.ChangeModified})
	}
	return changes
}

// workingHashes hashes every file of the working tree.
func (r *Repository) workingHashes() (map[string]string, error) {
	names, err := r.work.List()
	if err != nil {
		return nil, err
	}

	hashes := make(map[string]string, len(names))
	for _, name := range names {
		content, err := r.work.Read(name)
		if err != nil {
			r.logger.Warn("skipping unreadable file", zap.String("path", name), zap.Error(err))
			continue
		}
		hashes[name] = utils.HashContent(content)
	}
	return hashes, nil
}

func (r *Repository) branches() ([]shared.Branch, error) {
	names, err := r.refs.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	active, err := r.refs.Active()
	if err != nil {
		return nil, err
	}

	branches := make([]shared.Branch, 0, len(names))
	for _, name := range names {
		tip, err := r.refs.Tip(name)
		if err != nil {
			return nil, err
		}
		branches = append(branches, shared.Branch{Name: name, Tip: tip, Active: name == active})
	}
	return branches, nil
}
