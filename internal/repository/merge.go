// internal/repository/merge.go
package repository

import (
	"fmt"

	"gitlet/internal/errors"
	"gitlet/internal/merge"
	"gitlet/internal/object"
	"gitlet/internal/staging"

	"go.uber.org/zap"
)

// MergeOutcome says which path a merge took.
type MergeOutcome int

const (
	// MergeAncestor means the given branch was already contained in HEAD.
	MergeAncestor MergeOutcome = iota
	// MergeFastForward means HEAD was an ancestor of the given branch.
	MergeFastForward
	// MergeCommitted means a merge commit was written.
	MergeCommitted
)

// MergeResult is the outcome of a merge. Conflicts are reported here, not
// as errors.
type MergeResult struct {
	Outcome    MergeOutcome
	SplitPoint string
	CommitID   string
	Conflicts  []string
}

func (m *MergeResult) Conflict() bool {
	return len(m.Conflicts) > 0
}

// Notices returns the messages to show the user, in order.
func (m *MergeResult) Notices() []string {
	switch m.Outcome {
	case MergeAncestor:
		return []string{NoticeAncestor}
	case MergeFastForward:
		return []string{NoticeFastForward}
	}
	if m.Conflict() {
		return []string{NoticeConflict}
	}
	return nil
}

// Merge merges the tip of branch into the active branch.
func (r *Repository) Merge(branch string) (*MergeResult, error) {
	area, err := r.stage.Load()
	if err != nil {
		return nil, err
	}
	if !area.IsEmpty() {
		return nil, errors.PreconditionFailed(MsgUncommitted)
	}

	exists, err := r.refs.Exists(branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound(MsgBranchMissing)
	}
	active, err := r.refs.Active()
	if err != nil {
		return nil, err
	}
	if active == branch {
		return nil, errors.PreconditionFailed(MsgMergeSelf)
	}

	head, err := r.head()
	if err != nil {
		return nil, err
	}
	tip, err := r.refs.Tip(branch)
	if err != nil {
		return nil, err
	}
	given, err := r.objects.Commit(tip)
	if err != nil {
		return nil, fmt.Errorf("loading branch tip %s: %w", tip, err)
	}

	if err := r.checkUntracked(given.Files(), head, area); err != nil {
		return nil, err
	}

	split, err := merge.SplitPoint(r.history, head.ID(), given.ID())
	if err != nil {
		return nil, fmt.Errorf("finding split point: %w", err)
	}
	result := &MergeResult{SplitPoint: split}

	r.logger.Debug("merge split point",
		zap.String("branch", branch),
		zap.String("head", head.ID()),
		zap.String("given", given.ID()),
		zap.String("split", split))

	switch split {
	case given.ID():
		result.Outcome = MergeAncestor
		return result, nil

	case head.ID():
		if err := r.checkoutCommit(given); err != nil {
			return nil, err
		}
		if err := r.refs.SetTip(active, given.ID()); err != nil {
			return nil, err
		}
		if err := r.refs.SetHead(given.ID()); err != nil {
			return nil, err
		}
		result.Outcome = MergeFastForward
		result.CommitID = given.ID()
		return result, nil
	}

	base, err := r.objects.Commit(split)
	if err != nil {
		return nil, fmt.Errorf("loading split point %s: %w", split, err)
	}

	conflicts, err := r.apply(merge.Classify(base.Files(), head.Files(), given.Files()), head, area)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Merged %s into %s.", branch, active)
	c, err := r.commit(message, head, given.ID(), area)
	if err != nil {
		return nil, err
	}

	result.Outcome = MergeCommitted
	result.CommitID = c.ID()
	result.Conflicts = conflicts
	return result, nil
}

// apply carries out the classified decisions on the working tree and the
// staging area. It returns the conflicted names.
func (r *Repository) apply(decisions []merge.Decision, head *object.Commit, area *staging.Area) ([]string, error) {
	files := head.Files()
	var conflicts []string

	for _, d := range decisions {
		switch d.Action {
		case merge.TakeBranch:
			content, err := r.objects.Blob(d.Branch)
			if err != nil {
				return nil, fmt.Errorf("loading blob for %s: %w", d.Name, err)
			}
			if err := r.work.Write(d.Name, content); err != nil {
				return nil, err
			}
			area.StageAdd(d.Name, d.Branch, files)

		case merge.Remove:
			if _, err := area.StageRemove(d.Name, files); err != nil {
				return nil, fmt.Errorf("staging removal of %s: %w", d.Name, err)
			}
			if err := r.work.Delete(d.Name); err != nil {
				return nil, err
			}

		case merge.Conflict:
			current, err := r.blobOrEmpty(d.Current)
			if err != nil {
				return nil, err
			}
			incoming, err := r.blobOrEmpty(d.Branch)
			if err != nil {
				return nil, err
			}

			blob := object.NewBlob(d.Name, merge.ConflictContent(current, incoming))
			if err := r.objects.PutBlob(blob); err != nil {
				return nil, err
			}
			if err := r.work.Write(d.Name, blob.Content()); err != nil {
				return nil, err
			}
			area.StageAdd(d.Name, blob.ID(), files)
			conflicts = append(conflicts, d.Name)

			r.logger.Debug("merge conflict", zap.String("path", d.Name))
		}
	}
	return conflicts, nil
}

func (r *Repository) blobOrEmpty(id string) ([]byte, error) {
	if id == "" {
		return nil, nil
	}
	content, err := r.objects.Blob(id)
	if err != nil {
		return nil, fmt.Errorf("loading blob %s: %w", id, err)
	}
	return content, nil
}
