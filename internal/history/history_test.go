package history

import (
	"fmt"
	"testing"
	"time"

	"gitlet/internal/object"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLoader map[string]*object.Commit

func (m memLoader) Commit(id string) (*object.Commit, error) {
	c, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("no commit %s", id)
	}
	return c, nil
}

func (m memLoader) add(t *testing.T, msg string, parents ...string) string {
	t.Helper()
	opts := object.CommitOptions{Message: msg, Timestamp: time.Unix(int64(len(m)), 0)}
	if len(parents) > 0 {
		opts.Parent = parents[0]
	}
	if len(parents) > 1 {
		opts.SecondParent = parents[1]
	}
	c, err := object.NewCommit(opts)
	require.NoError(t, err)
	m[c.ID()] = c
	return c.ID()
}

func TestNavigator(t *testing.T) {
	// root - a - b - merge
	//         \      /
	//          side -
	commits := memLoader{}
	root := commits.add(t, "root")
	a := commits.add(t, "a", root)
	b := commits.add(t, "b", a)
	side := commits.add(t, "side", a)
	merge := commits.add(t, "merge", b, side)

	nav := New(commits)

	t.Run("Parents", func(t *testing.T) {
		p, err := nav.ParentOf(merge)
		require.NoError(t, err)
		assert.Equal(t, b, p)

		p, err = nav.SecondaryParentOf(merge)
		require.NoError(t, err)
		assert.Equal(t, side, p)

		p, err = nav.ParentOf(root)
		require.NoError(t, err)
		assert.Empty(t, p)

		p, err = nav.SecondaryParentOf(b)
		require.NoError(t, err)
		assert.Empty(t, p)
	})

	t.Run("FirstParents", func(t *testing.T) {
		var msgs []string
		for c, err := range nav.FirstParents(merge) {
			require.NoError(t, err)
			msgs = append(msgs, c.Message())
		}
		assert.Equal(t, []string{"merge", "b", "a", "root"}, msgs)
	})

	t.Run("FirstParentsReusable", func(t *testing.T) {
		seq := nav.FirstParents(b)
		for range 2 {
			var msgs []string
			for c, err := range seq {
				require.NoError(t, err)
				msgs = append(msgs, c.Message())
			}
			assert.Equal(t, []string{"b", "a", "root"}, msgs)
		}
	})

	t.Run("FirstParentsStopsEarly", func(t *testing.T) {
		count := 0
		for range nav.FirstParents(merge) {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("FirstParentsMissing", func(t *testing.T) {
		var errs []error
		for _, err := range nav.FirstParents("0000000000000000000000000000000000000000") {
			errs = append(errs, err)
		}
		require.Len(t, errs, 1)
		assert.Error(t, errs[0])
	})

	t.Run("Depths", func(t *testing.T) {
		depths, err := nav.Depths(merge)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{merge: 0, b: 1, side: 1, a: 2, root: 3}, depths)
	})

	t.Run("IsAncestor", func(t *testing.T) {
		ok, err := nav.IsAncestor(side, merge)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = nav.IsAncestor(merge, side)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = nav.IsAncestor(b, b)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
