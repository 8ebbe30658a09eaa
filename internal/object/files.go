package object

import (
	"maps"

	"gitlet/shared/utils"
)

// FileTable maps a tracked file name to the id of its blob.
type FileTable map[string]string

// Names returns the tracked names in ascending order.
func (f FileTable) Names() []string {
	return utils.SortedKeys(f)
}

func (f FileTable) Clone() FileTable {
	if f == nil {
		return FileTable{}
	}
	return maps.Clone(f)
}

func (f FileTable) Equal(other FileTable) bool {
	return maps.Equal(f, other)
}

// Union returns every name tracked by any of the tables, sorted.
func Union(tables ...FileTable) []string {
	seen := make(map[string]struct{})
	for _, t := range tables {
		for name := range t {
			seen[name] = struct{}{}
		}
	}
	return utils.SortedKeys(seen)
}
