// internal/workspace/local.go
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"gitlet/shared/utils"

	"go.uber.org/zap"
)

// ControlDir is the name of the repository directory inside the working
// tree.
const ControlDir = ".gitlet"

// tmpDir holds temp files of atomic working tree writes until they are
// renamed into place.
var tmpDir = path.Join(ControlDir, "tmp")

var (
	ErrNoRepository = errors.New("not inside a repository")
	ErrOutsideTree  = errors.New("path is outside the working tree")
)

// FindRoot searches upward from startDir for a directory holding ControlDir.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ControlDir)); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNoRepository
}

// LocalWorkspace reads and writes the files of a working tree. File names
// are slash separated and relative to Root.
type LocalWorkspace struct {
	Root   string
	Logger *zap.Logger
}

func NewLocalWorkspace(root string, logger *zap.Logger) *LocalWorkspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalWorkspace{Root: root, Logger: logger}
}

// Normalize turns a user supplied path, absolute or relative to cwd, into
// a working tree file name.
func (w *LocalWorkspace) Normalize(cwd, arg string) (string, error) {
	p := arg
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	rel, err := filepath.Rel(w.Root, p)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideTree, arg)
	}
	name := filepath.ToSlash(rel)
	if err := checkName(name); err != nil {
		return "", fmt.Errorf("%w: %s", err, arg)
	}
	return name, nil
}

func checkName(name string) error {
	if name == "" || name == "." || path.Clean(name) != name ||
		name == ".." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
		return ErrOutsideTree
	}
	if ShouldIgnore(name) {
		return fmt.Errorf("%w: %s is ignored", ErrOutsideTree, name)
	}
	return nil
}

func (w *LocalWorkspace) abs(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(w.Root, filepath.FromSlash(name)), nil
}

// Read returns the bytes of a working file.
func (w *LocalWorkspace) Read(name string) ([]byte, error) {
	p, err := w.abs(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// Exists reports whether name is a regular file in the working tree.
func (w *LocalWorkspace) Exists(name string) bool {
	p, err := w.abs(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Write replaces a working file, creating parent directories as needed.
func (w *LocalWorkspace) Write(name string, content []byte) error {
	p, err := w.abs(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", name, err)
	}
	tmp := filepath.Join(w.Root, filepath.FromSlash(tmpDir))
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	if err := utils.WriteFileAtomicVia(tmp, p, content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	w.Logger.Debug("working file written", zap.String("path", name), zap.Int("size", len(content)))
	return nil
}

// Delete removes a working file and any directories it leaves empty. A
// missing file is not an error.
func (w *LocalWorkspace) Delete(name string) error {
	p, err := w.abs(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", name, err)
	}

	for dir := filepath.Dir(p); dir != w.Root && strings.HasPrefix(dir, w.Root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			break // not empty
		}
	}
	w.Logger.Debug("working file deleted", zap.String("path", name))
	return nil
}

// List returns every regular file of the working tree, sorted.
func (w *LocalWorkspace) List() ([]string, error) {
	var names []string

	err := filepath.WalkDir(w.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == w.Root {
			return nil
		}

		relPath, err := filepath.Rel(w.Root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(relPath)

		if ShouldIgnore(name) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking working tree: %w", err)
	}

	slices.Sort(names)
	return names, nil
}

// ShouldIgnore reports whether a slash separated name is outside version
// control.
func ShouldIgnore(name string) bool {
	for _, part := range strings.Split(name, "/") {
		switch part {
		case ControlDir, ".git":
			return true
		}
	}
	return false
}
