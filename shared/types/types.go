// Package shared holds the records exchanged between the repository and its
// presentation layers.
package shared

type ChangeType string

const (
	ChangeModified  ChangeType = "modified"
	ChangeDeleted   ChangeType = "deleted"
	ChangeUntracked ChangeType = "untracked"
)

// Change is one working-tree file that differs from what the next commit
// would record.
type Change struct {
	Path string     `json:"path"`
	Type ChangeType `json:"type"`
}

// Branch is one entry of the branch table.
type Branch struct {
	Name   string `json:"name"`
	Tip    string `json:"tip"`
	Active bool   `json:"active"`
}

// Status is the full report behind the status command. Every list is sorted
// by name.
type Status struct {
	Branches  []Branch `json:"branches"`
	Staged    []string `json:"staged"`
	Removed   []string `json:"removed"`
	Unstaged  []Change `json:"unstaged"`
	Untracked []string `json:"untracked"`
}

// Clean reports whether nothing is staged, modified or untracked.
func (s *Status) Clean() bool {
	return len(s.Staged) == 0 && len(s.Removed) == 0 && len(s.Unstaged) == 0 && len(s.Untracked) == 0
}
