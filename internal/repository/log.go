// internal/repository/log.go
package repository

import (
	"fmt"
	"time"

	"gitlet/internal/errors"
	"gitlet/internal/object"
)

// LogEntry describes one commit for history listings.
type LogEntry struct {
	ID           string    `json:"id"`
	Parent       string    `json:"parent,omitempty"`
	SecondParent string    `json:"second_parent,omitempty"`
	Branch       string    `json:"branch"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e LogEntry) IsMerge() bool {
	return e.SecondParent != ""
}

func entryOf(c *object.Commit) LogEntry {
	return LogEntry{
		ID:           c.ID(),
		Parent:       c.Parent(),
		SecondParent: c.SecondParent(),
		Branch:       c.Branch(),
		Message:      c.Message(),
		Timestamp:    c.Timestamp(),
	}
}

// Log lists HEAD and its first-parent ancestors, newest first.
func (r *Repository) Log() ([]LogEntry, error) {
	head, err := r.refs.Head()
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	for c, err := range r.history.FirstParents(head) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entryOf(c))
	}
	return entries, nil
}

// GlobalLog lists every commit ever made, ordered by id.
func (r *Repository) GlobalLog() ([]LogEntry, error) {
	ids, err := r.objects.CommitIDs()
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}

	entries := make([]LogEntry, 0, len(ids))
	for _, id := range ids {
		c, err := r.objects.Commit(id)
		if err != nil {
			return nil, fmt.Errorf("loading commit %s: %w", id, err)
		}
		entries = append(entries, entryOf(c))
	}
	return entries, nil
}

// Find returns the ids of commits whose message is exactly message.
func (r *Repository) Find(message string) ([]string, error) {
	entries, err := r.GlobalLog()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if e.Message == message {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil, errors.NotFound(MsgNoMatchingCommit)
	}
	return ids, nil
}
