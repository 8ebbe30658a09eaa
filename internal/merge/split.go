// internal/merge/split.go
package merge

import (
	"cmp"
	"errors"
)

var ErrNoCommonAncestor = errors.New("commits share no ancestor")

// Ancestry reports every ancestor of a commit with its distance.
type Ancestry interface {
	Depths(id string) (map[string]int, error)
}

// SplitPoint returns the common ancestor of a and b used as the merge base.
//
// When one tip is an ancestor of the other it is returned as is. Otherwise
// the ancestor sets of both tips are collected independently and the common
// commit closest to both is chosen, ordered by the larger of its two
// distances, then their sum, then id. This is the first common node two
// breadth-first searches would meet at, which is not always the lowest
// common ancestor when histories cross more than once. The result does not
// depend on argument order.
func SplitPoint(g Ancestry, a, b string) (string, error) {
	if a == b {
		return a, nil
	}

	fromA, err := g.Depths(a)
	if err != nil {
		return "", err
	}
	if _, ok := fromA[b]; ok {
		return b, nil
	}

	fromB, err := g.Depths(b)
	if err != nil {
		return "", err
	}
	if _, ok := fromB[a]; ok {
		return a, nil
	}

	var (
		best  string
		bestK key
	)
	for id, da := range fromA {
		db, ok := fromB[id]
		if !ok {
			continue
		}
		k := key{far: max(da, db), sum: da + db, id: id}
		if best == "" || k.less(bestK) {
			best, bestK = id, k
		}
	}

	if best == "" {
		return "", ErrNoCommonAncestor
	}
	return best, nil
}

type key struct {
	far int
	sum int
	id  string
}

func (k key) less(o key) bool {
	if c := cmp.Compare(k.far, o.far); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(k.sum, o.sum); c != 0 {
		return c < 0
	}
	return k.id < o.id
}
