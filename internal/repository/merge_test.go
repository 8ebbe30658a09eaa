package repository

import (
	"testing"

	"gitlet/internal/errors"
	"gitlet/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diverge commits base on master, then one commit on a new branch "given"
// and one on master. It leaves master checked out.
func diverge(t *testing.T, r *Repository, base, current, given map[string]string) {
	t.Helper()
	commitFiles(t, r, "base", base)
	require.NoError(t, r.BranchCreate("given"))

	require.NoError(t, r.CheckoutBranch("given"))
	applyChanges(t, r, given)
	_, err := r.Commit("on given")
	require.NoError(t, err)

	require.NoError(t, r.CheckoutBranch("master"))
	applyChanges(t, r, current)
	_, err = r.Commit("on master")
	require.NoError(t, err)
}

// applyChanges stages files; an empty value stages a removal.
func applyChanges(t *testing.T, r *Repository, files map[string]string) {
	t.Helper()
	for _, name := range utils.SortedKeys(files) {
		if files[name] == "" {
			require.NoError(t, r.Rm(name))
			continue
		}
		writeFile(t, r, name, files[name])
		require.NoError(t, r.Add(name))
	}
}

func TestMergeTakesBranchChange(t *testing.T) {
	r := setupTestRepo(t)
	diverge(t, r,
		map[string]string{"f.txt": "one\n", "g.txt": "g\n"},
		map[string]string{"g.txt": "g2\n"},
		map[string]string{"f.txt": "two\n"},
	)

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.Equal(t, MergeCommitted, result.Outcome)
	assert.False(t, result.Conflict())
	assert.Empty(t, result.Notices())

	assert.Equal(t, "two\n", readFile(t, r, "f.txt"))
	assert.Equal(t, "g2\n", readFile(t, r, "g.txt"))
	assert.Equal(t, map[string]string{
		"f.txt": utils.HashContent([]byte("two\n")),
		"g.txt": utils.HashContent([]byte("g2\n")),
	}, headFiles(t, r))

	log, err := r.Log()
	require.NoError(t, err)
	assert.Equal(t, result.CommitID, log[0].ID)
	assert.Equal(t, "Merged given into master.", log[0].Message)
	assert.True(t, log[0].IsMerge())

	status, err := r.Status()
	require.NoError(t, err)
	assert.True(t, status.Clean())
}

func TestMergeConflict(t *testing.T) {
	r := setupTestRepo(t)
	diverge(t, r,
		map[string]string{"f.txt": "base\n"},
		map[string]string{"f.txt": "mine\n"},
		map[string]string{"f.txt": "theirs\n"},
	)

	status, err := r.Status()
	require.NoError(t, err)
	givenTip := status.Branches[0].Tip
	masterTip := status.Branches[1].Tip
	require.Equal(t, "given", status.Branches[0].Name)

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.True(t, result.Conflict())
	assert.Equal(t, []string{"f.txt"}, result.Conflicts)
	assert.Equal(t, []string{NoticeConflict}, result.Notices())

	assert.Equal(t, "<<<<<<< HEAD\nmine\n=======\ntheirs\n>>>>>>>\n", readFile(t, r, "f.txt"))

	head, err := r.head()
	require.NoError(t, err)
	assert.Equal(t, result.CommitID, head.ID())
	assert.Equal(t, masterTip, head.Parent())
	assert.Equal(t, givenTip, head.SecondParent())
	assert.Equal(t, utils.HashContent([]byte("<<<<<<< HEAD\nmine\n=======\ntheirs\n>>>>>>>\n")), head.Files()["f.txt"])
}

func TestMergeConflictWithDeletion(t *testing.T) {
	r := setupTestRepo(t)
	diverge(t, r,
		map[string]string{"f.txt": "base\n", "keep.txt": "k\n"},
		map[string]string{"f.txt": ""},
		map[string]string{"f.txt": "theirs\n"},
	)

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.Equal(t, []string{"f.txt"}, result.Conflicts)
	assert.Equal(t, "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>\n", readFile(t, r, "f.txt"))
}

func TestMergeRemovesAndAdds(t *testing.T) {
	r := setupTestRepo(t)
	diverge(t, r,
		map[string]string{"gone.txt": "x\n", "edited.txt": "e\n"},
		map[string]string{"edited.txt": "e2\n"},
		map[string]string{"gone.txt": "", "fresh.txt": "new\n"},
	)

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.False(t, result.Conflict())

	assert.False(t, fileExists(r, "gone.txt"))
	assert.Equal(t, "new\n", readFile(t, r, "fresh.txt"))
	assert.Equal(t, "e2\n", readFile(t, r, "edited.txt"))
	assert.Equal(t, []string{"edited.txt", "fresh.txt"}, utils.SortedKeys(headFiles(t, r)))
}

func TestMergeFastForward(t *testing.T) {
	r := setupTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": "1\n"})
	require.NoError(t, r.BranchCreate("given"))
	require.NoError(t, r.CheckoutBranch("given"))
	tip := commitFiles(t, r, "ahead", map[string]string{"f.txt": "2\n", "g.txt": "g\n"})
	require.NoError(t, r.CheckoutBranch("master"))

	before, err := r.GlobalLog()
	require.NoError(t, err)

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.Equal(t, MergeFastForward, result.Outcome)
	assert.Equal(t, []string{NoticeFastForward}, result.Notices())
	assert.Equal(t, tip, result.CommitID)

	after, err := r.GlobalLog()
	require.NoError(t, err)
	assert.Len(t, after, len(before), "no merge commit is written")

	status, err := r.Status()
	require.NoError(t, err)
	assert.Equal(t, tip, status.Branches[1].Tip)
	assert.True(t, status.Branches[1].Active)
	assert.Equal(t, "2\n", readFile(t, r, "f.txt"))
	assert.Equal(t, "g\n", readFile(t, r, "g.txt"))

	log, err := r.Log()
	require.NoError(t, err)
	assert.Equal(t, tip, log[0].ID)
}

func TestMergeAncestor(t *testing.T) {
	r := setupTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"f.txt": "1\n"})
	require.NoError(t, r.BranchCreate("given"))
	head := commitFiles(t, r, "ahead", map[string]string{"f.txt": "2\n"})

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.Equal(t, MergeAncestor, result.Outcome)
	assert.Equal(t, []string{NoticeAncestor}, result.Notices())

	log, err := r.Log()
	require.NoError(t, err)
	assert.Equal(t, head, log[0].ID)
	assert.Equal(t, "2\n", readFile(t, r, "f.txt"))
}

func TestMergeAfterMerge(t *testing.T) {
	r := setupTestRepo(t)
	diverge(t, r,
		map[string]string{"f.txt": "base\n"},
		map[string]string{"m.txt": "m\n"},
		map[string]string{"g.txt": "g\n"},
	)
	_, err := r.Merge("given")
	require.NoError(t, err)

	// Continue on the branch; the previous merge makes its old tip the
	// split point.
	require.NoError(t, r.CheckoutBranch("given"))
	commitFiles(t, r, "more on given", map[string]string{"f.txt": "given again\n"})
	require.NoError(t, r.CheckoutBranch("master"))

	result, err := r.Merge("given")
	require.NoError(t, err)
	assert.False(t, result.Conflict())
	assert.Equal(t, "given again\n", readFile(t, r, "f.txt"))
	assert.Equal(t, "m\n", readFile(t, r, "m.txt"))
	assert.Equal(t, "g\n", readFile(t, r, "g.txt"))
}

func TestMergePreconditions(t *testing.T) {
	r := setupTestRepo(t)
	diverge(t, r,
		map[string]string{"f.txt": "base\n"},
		map[string]string{"m.txt": "m\n"},
		map[string]string{"g.txt": "g\n"},
	)

	t.Run("Uncommitted", func(t *testing.T) {
		writeFile(t, r, "pending.txt", "p\n")
		require.NoError(t, r.Add("pending.txt"))
		_, err := r.Merge("ghost")
		requireError(t, err, errors.ErrorTypePrecondition, MsgUncommitted)
		require.NoError(t, r.Rm("pending.txt"))
	})

	t.Run("UnknownBranch", func(t *testing.T) {
		_, err := r.Merge("ghost")
		requireError(t, err, errors.ErrorTypeNotFound, MsgBranchMissing)
	})

	t.Run("Self", func(t *testing.T) {
		_, err := r.Merge("master")
		requireError(t, err, errors.ErrorTypePrecondition, MsgMergeSelf)
	})

	t.Run("UntrackedInTheWay", func(t *testing.T) {
		writeFile(t, r, "g.txt", "local\n")
		_, err := r.Merge("given")
		requireError(t, err, errors.ErrorTypePrecondition, MsgUntrackedInTheWay)
		assert.Equal(t, "local\n", readFile(t, r, "g.txt"))

		log, err := r.Log()
		require.NoError(t, err)
		assert.Equal(t, "on master", log[0].Message)
	})
}
