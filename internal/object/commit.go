// internal/object/commit.go
package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gitlet/shared/utils"
)

// Commit is an immutable snapshot. Its id is the hash of its canonical
// encoding, so all fields are fixed at construction.
type Commit struct {
	id           string
	message      string
	timestamp    time.Time
	parent       string
	secondParent string
	branch       string
	files        FileTable
	encoded      []byte
}

// CommitOptions describes a commit to build.
type CommitOptions struct {
	Message      string
	Timestamp    time.Time
	Parent       string
	SecondParent string
	Branch       string
	Files        FileTable
}

// record is the wire form. Field order is fixed by the struct and the file
// table is a name-sorted array, so equal commits encode to equal bytes.
type record struct {
	Message      string      `json:"message"`
	Timestamp    int64       `json:"timestamp"`
	Parent       string      `json:"parent,omitempty"`
	SecondParent string      `json:"second_parent,omitempty"`
	Branch       string      `json:"branch"`
	Files        []fileEntry `json:"files"`
}

type fileEntry struct {
	Name string `json:"name"`
	Blob string `json:"blob"`
}

// NewCommit builds a commit and computes its id.
func NewCommit(opts CommitOptions) (*Commit, error) {
	if opts.SecondParent != "" && opts.Parent == "" {
		return nil, fmt.Errorf("second parent without a parent")
	}
	for _, id := range []string{opts.Parent, opts.SecondParent} {
		if id != "" && !utils.IsValidID(id) {
			return nil, fmt.Errorf("invalid parent id %q", id)
		}
	}

	rec := record{
		Message:      opts.Message,
		Timestamp:    opts.Timestamp.UnixMilli(),
		Parent:       opts.Parent,
		SecondParent: opts.SecondParent,
		Branch:       opts.Branch,
		Files:        make([]fileEntry, 0, len(opts.Files)),
	}
	for _, name := range opts.Files.Names() {
		blob := opts.Files[name]
		if name == "" || !utils.IsValidID(blob) {
			return nil, fmt.Errorf("invalid file entry %q -> %q", name, blob)
		}
		rec.Files = append(rec.Files, fileEntry{Name: name, Blob: blob})
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding commit: %w", err)
	}
	return fromRecord(rec, data), nil
}

// DecodeCommit parses an encoded commit. The id is recomputed from data.
func DecodeCommit(data []byte) (*Commit, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding commit: %w", err)
	}
	for i := 1; i < len(rec.Files); i++ {
		if rec.Files[i-1].Name >= rec.Files[i].Name {
			return nil, fmt.Errorf("decoding commit: file table not in canonical order")
		}
	}
	return fromRecord(rec, bytes.Clone(data)), nil
}

func fromRecord(rec record, data []byte) *Commit {
	files := make(FileTable, len(rec.Files))
	for _, e := range rec.Files {
		files[e.Name] = e.Blob
	}
	return &Commit{
		id:           utils.HashContent(data),
		message:      rec.Message,
		timestamp:    time.UnixMilli(rec.Timestamp),
		parent:       rec.Parent,
		secondParent: rec.SecondParent,
		branch:       rec.Branch,
		files:        files,
		encoded:      data,
	}
}

func (c *Commit) ID() string           { return c.id }
func (c *Commit) Message() string      { return c.message }
func (c *Commit) Timestamp() time.Time { return c.timestamp }
func (c *Commit) Parent() string       { return c.parent }
func (c *Commit) SecondParent() string { return c.secondParent }
func (c *Commit) Branch() string       { return c.branch }
func (c *Commit) IsMerge() bool        { return c.secondParent != "" }
func (c *Commit) IsRoot() bool         { return c.parent == "" }

// Files returns a copy of the file table.
func (c *Commit) Files() FileTable {
	return c.files.Clone()
}

// Blob returns the blob id tracked under name.
func (c *Commit) Blob(name string) (string, bool) {
	id, ok := c.files[name]
	return id, ok
}

func (c *Commit) Tracks(name string) bool {
	_, ok := c.files[name]
	return ok
}

// Encoded returns the canonical bytes the id is computed from.
func (c *Commit) Encoded() []byte {
	return bytes.Clone(c.encoded)
}

// ShortID is the 7 character prefix used in merge log lines.
func ShortID(id string) string {
	if len(id) < 7 {
		return id
	}
	return id[:7]
}
