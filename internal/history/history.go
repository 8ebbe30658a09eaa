// internal/history/history.go
package history

import (
	"fmt"
	"iter"

	"gitlet/internal/object"
)

// Loader fetches a commit by id.
type Loader interface {
	Commit(id string) (*object.Commit, error)
}

// Navigator walks the commit graph through parent links.
type Navigator struct {
	commits Loader
}

func New(commits Loader) *Navigator {
	return &Navigator{commits: commits}
}

// ParentOf returns the first parent of id, or "" for the root commit.
func (n *Navigator) ParentOf(id string) (string, error) {
	c, err := n.commits.Commit(id)
	if err != nil {
		return "", err
	}
	return c.Parent(), nil
}

// SecondaryParentOf returns the merged-in parent of id, or "" when id is
// not a merge commit.
func (n *Navigator) SecondaryParentOf(id string) (string, error) {
	c, err := n.commits.Commit(id)
	if err != nil {
		return "", err
	}
	return c.SecondParent(), nil
}

// FirstParents yields id and then each first parent until the root. The
// sequence stops after the first load error, which is yielded.
func (n *Navigator) FirstParents(id string) iter.Seq2[*object.Commit, error] {
	return func(yield func(*object.Commit, error) bool) {
		for cur := id; cur != ""; {
			c, err := n.commits.Commit(cur)
			if err != nil {
				yield(nil, fmt.Errorf("loading commit %s: %w", cur, err))
				return
			}
			if !yield(c, nil) {
				return
			}
			cur = c.Parent()
		}
	}
}

// Depths maps every ancestor of id (id included) to its distance from id,
// following both parents breadth first. Parents are visited first parent
// before second.
func (n *Navigator) Depths(id string) (map[string]int, error) {
	depths := map[string]int{id: 0}
	queue := []string{id}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		c, err := n.commits.Commit(cur)
		if err != nil {
			return nil, fmt.Errorf("loading commit %s: %w", cur, err)
		}
		for _, p := range []string{c.Parent(), c.SecondParent()} {
			if p == "" {
				continue
			}
			if _, seen := depths[p]; seen {
				continue
			}
			depths[p] = depths[cur] + 1
			queue = append(queue, p)
		}
	}
	return depths, nil
}

// IsAncestor reports whether ancestor is reachable from id, counting id
// itself.
func (n *Navigator) IsAncestor(ancestor, id string) (bool, error) {
	depths, err := n.Depths(id)
	if err != nil {
		return false, err
	}
	_, ok := depths[ancestor]
	return ok, nil
}
