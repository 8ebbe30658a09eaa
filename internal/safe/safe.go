// internal/safe/safe.go
package safe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gitlet/internal/storage"
	"gitlet/shared/utils"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var (
	ErrContentNotFound = errors.New("object not found")
	ErrInvalidHash     = errors.New("invalid object id")
	ErrAmbiguous       = errors.New("ambiguous object id prefix")
)

// MinPrefixLength is the shortest abbreviated id Resolve accepts.
const MinPrefixLength = 4

// Kind separates the id spaces of the store. Blobs and commits live in
// their own directories and metadata prefixes.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindCommit Kind = "commit"
)

func (k Kind) dir() string {
	return string(k) + "s"
}

// ObjectMeta stores metadata about a stored object
type ObjectMeta struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Name       string    `json:"name,omitempty"`
	Size       int64     `json:"size"`
	StoredSize int64     `json:"stored_size"`
	Compressed bool      `json:"compressed"`
	CreatedAt  time.Time `json:"created_at"`
}

// Safe is the content-addressed, write-once object store. Payloads are
// files under root/<kind>s/aa/bbbb...; metadata lives in badger.
type Safe struct {
	root        string
	meta        map[Kind]*storage.BadgerStore
	cache       *lru.Cache[string, []byte]
	compression *compressionManager
	compressNew bool
	logger      *zap.Logger
}

// Options configures Safe behavior
type Options struct {
	Root        string // Root directory path
	CacheSize   int    // Number of objects to cache
	Compress    bool   // Compress newly written objects
	Compression CompressionOptions
	Logger      *zap.Logger
}

// New creates a new Safe instance
func New(db *badger.DB, opts Options) (*Safe, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}

	for _, kind := range []Kind{KindBlob, KindCommit} {
		if err := os.MkdirAll(filepath.Join(opts.Root, kind.dir()), 0755); err != nil {
			return nil, fmt.Errorf("creating %s directory: %w", kind, err)
		}
	}

	// Use reasonable defaults
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.Compression.Level == 0 {
		opts.Compression.Level = DefaultCompressionOptions().Level
	}
	if opts.Compression.SkipExtensions == nil {
		opts.Compression.SkipExtensions = DefaultCompressionOptions().SkipExtensions
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	cm, err := newCompressionManager(opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("creating compression manager: %w", err)
	}

	return &Safe{
		root: opts.Root,
		meta: map[Kind]*storage.BadgerStore{
			KindBlob:   storage.NewBadgerStore(db, "object:"+string(KindBlob)),
			KindCommit: storage.NewBadgerStore(db, "object:"+string(KindCommit)),
		},
		cache:       cache,
		compression: cm,
		compressNew: opts.Compress,
		logger:      opts.Logger,
	}, nil
}

// Close releases the compression encoder and decoder.
func (s *Safe) Close() {
	s.compression.close()
}

// Put stores content under its hash and returns the id. Storing bytes that
// are already present is a no-op. name is recorded as metadata only.
func (s *Safe) Put(kind Kind, name string, content []byte) (string, error) {
	if content == nil {
		content = []byte{}
	}

	hash := utils.HashContent(content)

	exists, err := s.Exists(kind, hash)
	if err != nil {
		return "", fmt.Errorf("checking existence: %w", err)
	}
	if exists {
		return hash, nil
	}

	stored, compressed := content, false
	if s.compressNew {
		stored, compressed = s.compression.compress(name, content)
	}

	contentPath := s.contentPath(kind, hash)
	if err := os.MkdirAll(filepath.Dir(contentPath), 0755); err != nil {
		return "", fmt.Errorf("creating content directory: %w", err)
	}
	if err := utils.WriteFileAtomic(contentPath, stored, 0444); err != nil {
		return "", fmt.Errorf("writing content file: %w", err)
	}

	meta := ObjectMeta{
		ID:         hash,
		Kind:       kind,
		Name:       name,
		Size:       int64(len(content)),
		StoredSize: int64(len(stored)),
		Compressed: compressed,
		CreatedAt:  time.Now(),
	}
	if err := s.meta[kind].Put(hash, meta); err != nil {
		return "", fmt.Errorf("storing metadata: %w", err)
	}

	s.cache.Add(cacheKey(kind, hash), content)
	s.logger.Debug("object stored",
		zap.String("kind", string(kind)),
		zap.String("id", hash),
		zap.Int64("size", meta.Size),
		zap.Bool("compressed", compressed))

	return hash, nil
}

// Get retrieves the raw bytes of an object. It fails with
// ErrContentNotFound when no object with that id exists.
func (s *Safe) Get(kind Kind, id string) ([]byte, error) {
	if !utils.IsValidID(id) {
		return nil, ErrInvalidHash
	}

	if content, ok := s.cache.Get(cacheKey(kind, id)); ok {
		return content, nil
	}

	meta, err := s.Meta(kind, id)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(s.contentPath(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("metadata without content file",
				zap.String("kind", string(kind)), zap.String("id", id))
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("reading content: %w", err)
	}

	if meta.Compressed {
		content, err = s.compression.decompress(content)
		if err != nil {
			return nil, fmt.Errorf("decompressing content: %w", err)
		}
	}

	if utils.HashContent(content) != id {
		return nil, fmt.Errorf("content hash mismatch for %s %s", kind, id)
	}

	s.cache.Add(cacheKey(kind, id), content)
	return content, nil
}

// Exists checks if an object exists
func (s *Safe) Exists(kind Kind, id string) (bool, error) {
	if !utils.IsValidID(id) {
		return false, ErrInvalidHash
	}

	if s.cache.Contains(cacheKey(kind, id)) {
		return true, nil
	}

	return s.meta[kind].Has(id)
}

// Meta returns the metadata recorded for an object.
func (s *Safe) Meta(kind Kind, id string) (ObjectMeta, error) {
	var meta ObjectMeta
	err := s.meta[kind].Get(id, &meta)
	if errors.Is(err, storage.ErrNotFound) {
		return meta, ErrContentNotFound
	}
	if err != nil {
		return meta, fmt.Errorf("getting metadata: %w", err)
	}
	return meta, nil
}

// List returns the ids of every object of a kind in ascending order.
func (s *Safe) List(kind Kind) ([]string, error) {
	return s.meta[kind].Keys()
}

// Resolve expands an abbreviated id to the single full id it prefixes.
func (s *Safe) Resolve(kind Kind, prefix string) (string, error) {
	if utils.IsValidID(prefix) {
		return prefix, nil
	}
	if len(prefix) < MinPrefixLength {
		return "", ErrContentNotFound
	}
	if !utils.IsHexPrefix(prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, prefix)
	}

	ids, err := s.meta[kind].KeysWithPrefix(prefix)
	if err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", ErrContentNotFound
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d objects", ErrAmbiguous, prefix, len(ids))
	}
}

// Verify checks content integrity
func (s *Safe) Verify(kind Kind, id string) error {
	s.cache.Remove(cacheKey(kind, id))
	_, err := s.Get(kind, id)
	return err
}

// Stats summarises the objects of one kind.
type Stats struct {
	Count      int
	Size       int64
	StoredSize int64
	Compressed int
}

func (s *Safe) Stats(kind Kind) (Stats, error) {
	var st Stats
	err := s.meta[kind].Each(func(id string, raw []byte) error {
		var meta ObjectMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("decoding metadata %s: %w", id, err)
		}
		st.Count++
		st.Size += meta.Size
		st.StoredSize += meta.StoredSize
		if meta.Compressed {
			st.Compressed++
		}
		return nil
	})
	return st, err
}

// Internal helper functions

func cacheKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

func (s *Safe) contentPath(kind Kind, hash string) string {
	return filepath.Join(s.root, kind.dir(), hash[:2], hash[2:])
}
