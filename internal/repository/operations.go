// internal/repository/operations.go
package repository

import (
	stderrors "errors"
	"fmt"
	"strings"

	"gitlet/internal/errors"
	"gitlet/internal/object"
	"gitlet/internal/refs"
	"gitlet/internal/staging"

	"go.uber.org/zap"
)

// Add stages the working copies of names. Staging content identical to
// the HEAD version un-stages the file instead. A missing file that HEAD
// tracks is restored from HEAD. Every name is checked before anything is
// staged, and the staging area is saved once.
func (r *Repository) Add(names ...string) error {
	head, err := r.head()
	if err != nil {
		return err
	}
	area, err := r.stage.Load()
	if err != nil {
		return err
	}
	files := head.Files()

	for _, name := range names {
		if _, tracked := files[name]; !tracked && !r.work.Exists(name) {
			return errors.NotFound(MsgFileNotFound)
		}
	}

	for _, name := range names {
		if !r.work.Exists(name) {
			tracked := files[name]
			content, err := r.objects.Blob(tracked)
			if err != nil {
				return fmt.Errorf("loading blob %s: %w", tracked, err)
			}
			if err := r.work.Write(name, content); err != nil {
				return err
			}
			area.StageAdd(name, tracked, files)
			r.logger.Debug("restored tracked file", zap.String("path", name))
			continue
		}

		content, err := r.work.Read(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		blob := object.NewBlob(name, content)
		if err := r.objects.PutBlob(blob); err != nil {
			return err
		}
		area.StageAdd(name, blob.ID(), files)
		r.logger.Debug("file staged", zap.String("path", name), zap.String("blob", blob.ID()))
	}
	return r.stage.Save(area)
}

// Commit records the staged changes on the active branch and returns the
// new commit id.
func (r *Repository) Commit(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.PreconditionFailed(MsgEmptyMessage)
	}
	head, err := r.head()
	if err != nil {
		return "", err
	}
	area, err := r.stage.Load()
	if err != nil {
		return "", err
	}
	if area.IsEmpty() {
		return "", errors.PreconditionFailed(MsgNoChanges)
	}

	c, err := r.commit(message, head, "", area)
	if err != nil {
		return "", err
	}
	return c.ID(), nil
}

// commit folds area into head, stores the result, advances the active
// branch and HEAD, then clears area.
func (r *Repository) commit(message string, head *object.Commit, secondParent string, area *staging.Area) (*object.Commit, error) {
	active, err := r.refs.Active()
	if err != nil {
		return nil, err
	}

	c, err := object.NewCommit(object.CommitOptions{
		Message:      message,
		Timestamp:    r.clock(),
		Parent:       head.ID(),
		SecondParent: secondParent,
		Branch:       active,
		Files:        area.Fold(head.Files()),
	})
	if err != nil {
		return nil, fmt.Errorf("building commit: %w", err)
	}

	if err := r.objects.PutCommit(c); err != nil {
		return nil, err
	}
	if err := r.refs.SetTip(active, c.ID()); err != nil {
		return nil, err
	}
	if err := r.refs.SetHead(c.ID()); err != nil {
		return nil, err
	}
	area.Clear()
	if err := r.stage.Save(area); err != nil {
		return nil, err
	}

	r.logger.Info("commit created",
		zap.String("id", c.ID()),
		zap.String("branch", active),
		zap.Bool("merge", c.IsMerge()))
	return c, nil
}

// Rm un-stages names and, for those HEAD tracks, stages their removal
// and deletes the working copies. When any name has nothing to remove,
// nothing is changed.
func (r *Repository) Rm(names ...string) error {
	head, err := r.head()
	if err != nil {
		return err
	}
	area, err := r.stage.Load()
	if err != nil {
		return err
	}
	files := head.Files()

	var doomed []string
	for _, name := range names {
		tracked, err := area.StageRemove(name, files)
		if stderrors.Is(err, staging.ErrNothingToRemove) {
			return errors.PreconditionFailed(MsgNothingToRemove)
		}
		if err != nil {
			return err
		}
		if tracked {
			doomed = append(doomed, name)
		}
	}

	for _, name := range doomed {
		if err := r.work.Delete(name); err != nil {
			return err
		}
	}
	return r.stage.Save(area)
}

// CheckoutFile restores name from the HEAD commit. The staging area is
// left alone.
func (r *Repository) CheckoutFile(name string) error {
	head, err := r.head()
	if err != nil {
		return err
	}
	return r.writeFrom(head, name)
}

// CheckoutFileAt restores name from the commit with the given full or
// abbreviated id.
func (r *Repository) CheckoutFileAt(commitID, name string) error {
	c, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	return r.writeFrom(c, name)
}

func (r *Repository) writeFrom(c *object.Commit, name string) error {
	blob, ok := c.Blob(name)
	if !ok {
		return errors.NotFound(MsgNotInCommit)
	}
	content, err := r.objects.Blob(blob)
	if err != nil {
		return fmt.Errorf("loading blob %s: %w", blob, err)
	}
	return r.work.Write(name, content)
}

// CheckoutBranch makes name the active branch and replaces the working
// tree with its tip.
func (r *Repository) CheckoutBranch(name string) error {
	exists, err := r.refs.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound(MsgNoSuchBranch)
	}
	active, err := r.refs.Active()
	if err != nil {
		return err
	}
	if active == name {
		return errors.PreconditionFailed(MsgAlreadyOnBranch)
	}

	tip, err := r.refs.Tip(name)
	if err != nil {
		return err
	}
	target, err := r.objects.Commit(tip)
	if err != nil {
		return fmt.Errorf("loading branch tip %s: %w", tip, err)
	}

	if err := r.checkoutCommit(target); err != nil {
		return err
	}
	if err := r.refs.SetActive(name); err != nil {
		return err
	}
	return r.refs.SetHead(tip)
}

// Reset checks out the given commit and moves the active branch to it.
func (r *Repository) Reset(commitID string) error {
	target, err := r.resolveCommit(commitID)
	if err != nil {
		return err
	}
	if err := r.checkoutCommit(target); err != nil {
		return err
	}

	active, err := r.refs.Active()
	if err != nil {
		return err
	}
	if err := r.refs.SetTip(active, target.ID()); err != nil {
		return err
	}
	return r.refs.SetHead(target.ID())
}

// checkoutCommit replaces the tracked files of the working tree with those
// of target and clears the staging area. Refs are left to the caller.
func (r *Repository) checkoutCommit(target *object.Commit) error {
	head, err := r.head()
	if err != nil {
		return err
	}
	area, err := r.stage.Load()
	if err != nil {
		return err
	}

	incoming := target.Files()
	if err := r.checkUntracked(incoming, head, area); err != nil {
		return err
	}

	for _, name := range incoming.Names() {
		content, err := r.objects.Blob(incoming[name])
		if err != nil {
			return fmt.Errorf("loading blob for %s: %w", name, err)
		}
		if err := r.work.Write(name, content); err != nil {
			return err
		}
	}
	for _, name := range head.Files().Names() {
		if _, keep := incoming[name]; !keep {
			if err := r.work.Delete(name); err != nil {
				return err
			}
		}
	}

	area.Clear()
	if err := r.stage.Save(area); err != nil {
		return err
	}

	r.logger.Debug("working tree checked out", zap.String("commit", target.ID()))
	return nil
}

// checkUntracked fails when a file present in the working tree, but
// neither tracked by head nor staged, would be overwritten by incoming.
func (r *Repository) checkUntracked(incoming object.FileTable, head *object.Commit, area *staging.Area) error {
	for _, name := range incoming.Names() {
		if head.Tracks(name) {
			continue
		}
		if _, staged := area.StagedBlob(name); staged {
			continue
		}
		if r.work.Exists(name) {
			r.logger.Debug("untracked file in the way", zap.String("path", name))
			return errors.PreconditionFailed(MsgUntrackedInTheWay)
		}
	}
	return nil
}

// BranchCreate adds a branch pointing at HEAD without switching to it.
func (r *Repository) BranchCreate(name string) error {
	if err := refs.ValidateName(name); err != nil {
		return errors.PreconditionFailed(MsgInvalidBranchName)
	}
	head, err := r.refs.Head()
	if err != nil {
		return err
	}

	err = r.refs.Create(name, head)
	if stderrors.Is(err, refs.ErrBranchExists) {
		return errors.PreconditionFailed(MsgBranchExists)
	}
	return err
}

// BranchRemove deletes the branch pointer. Its commits are kept.
func (r *Repository) BranchRemove(name string) error {
	err := r.refs.Delete(name)
	switch {
	case stderrors.Is(err, refs.ErrBranchNotFound):
		return errors.NotFound(MsgBranchMissing)
	case stderrors.Is(err, refs.ErrActiveBranch):
		return errors.PreconditionFailed(MsgRemoveActive)
	}
	return err
}
