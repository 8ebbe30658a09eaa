// internal/repository/repository.go
package repository

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlet/internal/config"
	"gitlet/internal/errors"
	"gitlet/internal/history"
	"gitlet/internal/logging"
	"gitlet/internal/object"
	"gitlet/internal/refs"
	"gitlet/internal/safe"
	"gitlet/internal/staging"
	"gitlet/internal/workspace"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	initialMessage = "initial commit"
	configFile     = "config"
)

// Repository is the context every operation runs against: the working
// tree plus the stores kept under its control directory.
type Repository struct {
	Root string

	dir      string
	db       *badger.DB
	safe     *safe.Safe
	objects  *object.Store
	stage    *staging.Store
	refs     *refs.Table
	history  *history.Navigator
	work     *workspace.LocalWorkspace
	settings *config.RepoConfig
	clock    func() time.Time
	logger   *zap.Logger
}

// Options configures how a repository is opened.
type Options struct {
	Settings *config.Config
	Logger   *zap.Logger
	// Clock stamps new commits. Defaults to time.Now.
	Clock func() time.Time
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Settings == nil {
		out.Settings = config.Default()
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	return out
}

func controlDir(root string) string {
	return filepath.Join(root, workspace.ControlDir)
}

// Init creates a repository in root with a single root commit on the
// default branch.
func Init(root string, opts *Options) (*Repository, error) {
	o := opts.withDefaults()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	dir := controlDir(absRoot)

	if _, err := os.Stat(dir); err == nil {
		return nil, errors.PreconditionFailed(MsgRepoExists)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s directory: %w", workspace.ControlDir, err)
	}
	if _, err := config.CreateRepoConfig(filepath.Join(dir, configFile), uuid.NewString(), o.Clock()); err != nil {
		return nil, err
	}

	r, err := open(absRoot, o)
	if err != nil {
		return nil, err
	}

	if err := r.bootstrap(); err != nil {
		r.Close()
		return nil, fmt.Errorf("creating initial commit: %w", err)
	}

	r.logger.Info("repository initialized", zap.String("root", absRoot))
	return r, nil
}

func (r *Repository) bootstrap() error {
	branch := r.settings.DefaultBranch()

	root, err := object.NewCommit(object.CommitOptions{
		Message:   initialMessage,
		Timestamp: time.Unix(0, 0),
		Branch:    branch,
	})
	if err != nil {
		return err
	}
	if err := r.objects.PutCommit(root); err != nil {
		return err
	}
	if err := r.refs.Create(branch, root.ID()); err != nil {
		return err
	}
	if err := r.refs.SetActive(branch); err != nil {
		return err
	}
	if err := r.refs.SetHead(root.ID()); err != nil {
		return err
	}
	return r.stage.Save(staging.NewArea())
}

// Open opens the repository whose working tree is root.
func Open(root string, opts *Options) (*Repository, error) {
	o := opts.withDefaults()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}
	if info, err := os.Stat(controlDir(absRoot)); err != nil || !info.IsDir() {
		return nil, errors.PreconditionFailed(MsgNotInitialized)
	}
	return open(absRoot, o)
}

func open(root string, o Options) (*Repository, error) {
	dir := controlDir(root)

	settings, err := config.LoadRepoConfig(filepath.Join(dir, configFile))
	if err != nil {
		return nil, err
	}

	dbOpts := badger.DefaultOptions(filepath.Join(dir, "db")).
		WithLogger(logging.NewBadgerLogger(o.Logger))
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	objectSafe, err := safe.New(db, safe.Options{
		Root:      filepath.Join(dir, "objects"),
		CacheSize: o.Settings.CacheSize,
		Compress:  settings.Compress(),
		Compression: safe.CompressionOptions{
			MinSize: o.Settings.Compression.MinSize,
			Level:   o.Settings.Compression.Level,
		},
		Logger: o.Logger,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing object safe: %w", err)
	}

	table, err := refs.NewTable(db, dir, o.Logger)
	if err != nil {
		objectSafe.Close()
		db.Close()
		return nil, err
	}

	objects := object.NewStore(objectSafe)
	return &Repository{
		Root:     root,
		dir:      dir,
		db:       db,
		safe:     objectSafe,
		objects:  objects,
		stage:    staging.NewStore(db, o.Logger),
		refs:     table,
		history:  history.New(objects),
		work:     workspace.NewLocalWorkspace(root, o.Logger),
		settings: settings,
		clock:    o.Clock,
		logger:   o.Logger,
	}, nil
}

// Close releases the database and compression resources.
func (r *Repository) Close() error {
	r.safe.Close()
	return r.db.Close()
}

// Normalize maps a path given relative to cwd onto a working tree name.
func (r *Repository) Normalize(cwd, arg string) (string, error) {
	return r.work.Normalize(cwd, arg)
}

func (r *Repository) head() (*object.Commit, error) {
	id, err := r.refs.Head()
	if err != nil {
		return nil, err
	}
	c, err := r.objects.Commit(id)
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit %s: %w", id, err)
	}
	return c, nil
}

// resolveCommit loads the commit named by a full or abbreviated id.
func (r *Repository) resolveCommit(arg string) (*object.Commit, error) {
	id, err := r.objects.ResolveCommit(arg)
	if err != nil {
		r.logger.Debug("commit not resolved", zap.String("arg", arg), zap.Error(err))
		return nil, errors.NotFound(MsgNoSuchCommit)
	}
	c, err := r.objects.Commit(id)
	if stderrors.Is(err, safe.ErrContentNotFound) {
		return nil, errors.NotFound(MsgNoSuchCommit)
	}
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", id, err)
	}
	return c, nil
}
