// internal/refs/refs.go
package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlet/internal/storage"
	"gitlet/shared/utils"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

var (
	ErrBranchExists   = errors.New("branch already exists")
	ErrBranchNotFound = errors.New("branch not found")
	ErrActiveBranch   = errors.New("branch is active")
	ErrInvalidName    = errors.New("invalid branch name")
)

const (
	headFile        = "HEAD"
	keyActiveBranch = "active_branch"
)

// Table is the branch table. Branch membership and the active branch are
// kept in badger; HEAD and each branch tip are small text files holding a
// commit id.
type Table struct {
	dir      string
	branches *storage.BadgerStore
	meta     *storage.BadgerStore
	logger   *zap.Logger
}

// NewTable opens the branch table rooted at the control directory dir.
func NewTable(db *badger.DB, dir string, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Join(dir, "refs", "heads"), 0755); err != nil {
		return nil, fmt.Errorf("creating refs directory: %w", err)
	}
	return &Table{
		dir:      dir,
		branches: storage.NewBadgerStore(db, "branch"),
		meta:     storage.NewBadgerStore(db, "meta"),
		logger:   logger,
	}, nil
}

// ValidateName rejects names that cannot be stored as a pointer file.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\:`) || strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func (t *Table) tipPath(name string) string {
	return filepath.Join(t.dir, "refs", "heads", name)
}

// Branches returns every branch name in ascending order.
func (t *Table) Branches() ([]string, error) {
	return t.branches.Keys()
}

func (t *Table) Exists(name string) (bool, error) {
	return t.branches.Has(name)
}

// Create adds a branch pointing at tip. It does not change the active
// branch.
func (t *Table) Create(name, tip string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	exists, err := t.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	}

	if err := t.writePointer(t.tipPath(name), tip); err != nil {
		return err
	}
	if err := t.branches.Put(name, nil); err != nil {
		return fmt.Errorf("recording branch %s: %w", name, err)
	}

	t.logger.Debug("branch created", zap.String("branch", name), zap.String("tip", tip))
	return nil
}

// Delete removes the branch reference only; commits stay in the store.
func (t *Table) Delete(name string) error {
	exists, err := t.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	active, err := t.Active()
	if err != nil {
		return err
	}
	if active == name {
		return fmt.Errorf("%w: %s", ErrActiveBranch, name)
	}

	if err := t.branches.Delete(name); err != nil {
		return fmt.Errorf("removing branch %s: %w", name, err)
	}
	if err := os.Remove(t.tipPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing branch pointer %s: %w", name, err)
	}

	t.logger.Debug("branch removed", zap.String("branch", name))
	return nil
}

// Active returns the name of the checked-out branch.
func (t *Table) Active() (string, error) {
	var name string
	if err := t.meta.Get(keyActiveBranch, &name); err != nil {
		return "", fmt.Errorf("reading active branch: %w", err)
	}
	return name, nil
}

func (t *Table) SetActive(name string) error {
	exists, err := t.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	if err := t.meta.Put(keyActiveBranch, name); err != nil {
		return fmt.Errorf("setting active branch: %w", err)
	}
	t.logger.Debug("active branch changed", zap.String("branch", name))
	return nil
}

// Tip returns the commit id a branch points at.
func (t *Table) Tip(name string) (string, error) {
	exists, err := t.Exists(name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	return t.readPointer(t.tipPath(name))
}

func (t *Table) SetTip(name, id string) error {
	exists, err := t.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
	}
	if err := t.writePointer(t.tipPath(name), id); err != nil {
		return err
	}
	t.logger.Debug("branch moved", zap.String("branch", name), zap.String("tip", id))
	return nil
}

// Head returns the checked-out commit id.
func (t *Table) Head() (string, error) {
	return t.readPointer(filepath.Join(t.dir, headFile))
}

func (t *Table) SetHead(id string) error {
	return t.writePointer(filepath.Join(t.dir, headFile), id)
}

func (t *Table) readPointer(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading pointer %s: %w", filepath.Base(path), err)
	}
	id := strings.TrimSpace(string(data))
	if !utils.IsValidID(id) {
		return "", fmt.Errorf("pointer %s holds invalid id %q", filepath.Base(path), id)
	}
	return id, nil
}

func (t *Table) writePointer(path, id string) error {
	if !utils.IsValidID(id) {
		return fmt.Errorf("invalid commit id %q", id)
	}
	if err := utils.WriteFileAtomic(path, []byte(id+"\n"), 0644); err != nil {
		return fmt.Errorf("writing pointer %s: %w", filepath.Base(path), err)
	}
	return nil
}
