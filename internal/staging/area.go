// internal/staging/area.go
package staging

import (
	"errors"
	"maps"

	"gitlet/internal/object"
	"gitlet/shared/utils"
)

// ErrNothingToRemove is returned when a file is neither staged nor tracked.
var ErrNothingToRemove = errors.New("file is neither staged nor tracked")

// Area holds the changes pending for the next commit: files staged for
// addition with their blob ids, and tracked files staged for removal. A
// name is never in both.
type Area struct {
	add    map[string]string
	remove map[string]struct{}
}

func NewArea() *Area {
	return &Area{
		add:    make(map[string]string),
		remove: make(map[string]struct{}),
	}
}

// StageAdd records blobID for name. When head already tracks the same blob
// the file is unchanged and any pending addition is dropped instead.
func (a *Area) StageAdd(name, blobID string, head object.FileTable) {
	delete(a.remove, name)
	if tracked, ok := head[name]; ok && tracked == blobID {
		delete(a.add, name)
		return
	}
	a.add[name] = blobID
}

// StageRemove drops a pending addition of name and, when head tracks it,
// marks it for removal. It reports whether the file is tracked by head, in
// which case the caller deletes the working copy.
func (a *Area) StageRemove(name string, head object.FileTable) (bool, error) {
	_, staged := a.add[name]
	_, tracked := head[name]
	if !staged && !tracked {
		return false, ErrNothingToRemove
	}

	delete(a.add, name)
	if tracked {
		a.remove[name] = struct{}{}
	}
	return tracked, nil
}

// Fold returns parent overlaid with the staged additions minus the staged
// removals. parent is not modified.
func (a *Area) Fold(parent object.FileTable) object.FileTable {
	files := parent.Clone()
	for name, blob := range a.add {
		files[name] = blob
	}
	for name := range a.remove {
		delete(files, name)
	}
	return files
}

func (a *Area) Clear() {
	clear(a.add)
	clear(a.remove)
}

func (a *Area) IsEmpty() bool {
	return len(a.add) == 0 && len(a.remove) == 0
}

// Added returns a copy of the staged additions.
func (a *Area) Added() object.FileTable {
	return object.FileTable(maps.Clone(a.add))
}

// Removed returns the names staged for removal, sorted.
func (a *Area) Removed() []string {
	return utils.SortedKeys(a.remove)
}

func (a *Area) StagedBlob(name string) (string, bool) {
	id, ok := a.add[name]
	return id, ok
}

func (a *Area) IsRemoved(name string) bool {
	_, ok := a.remove[name]
	return ok
}
