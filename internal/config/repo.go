package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

const (
	sectionCore          = "core"
	DefaultBranchName    = "master"
	keyID                = "id"
	keyCreated           = "created"
	keyCompress          = "compress"
	keyDefaultBranchName = "default_branch"
)

// ErrInvalidKey is returned for keys not shaped like "section.name".
var ErrInvalidKey = errors.New("invalid config key")

// RepoConfig is the ini file stored inside a repository's control directory.
type RepoConfig struct {
	path string
	file *ini.File
}

// CreateRepoConfig writes a fresh repository config to path.
func CreateRepoConfig(path, id string, created time.Time) (*RepoConfig, error) {
	file := ini.Empty()
	core := file.Section(sectionCore)
	core.Key(keyID).SetValue(id)
	core.Key(keyCreated).SetValue(created.UTC().Format(time.RFC3339))
	core.Key(keyCompress).SetValue("true")
	core.Key(keyDefaultBranchName).SetValue(DefaultBranchName)

	if err := file.SaveTo(path); err != nil {
		return nil, fmt.Errorf("writing repository config: %w", err)
	}
	return &RepoConfig{path: path, file: file}, nil
}

// LoadRepoConfig reads the repository config at path.
func LoadRepoConfig(path string) (*RepoConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading repository config: %w", err)
	}
	return &RepoConfig{path: path, file: file}, nil
}

func splitKey(key string) (string, string, error) {
	section, name, ok := strings.Cut(key, ".")
	if !ok || section == "" || name == "" {
		return "", "", fmt.Errorf("%w: %q must look like section.name", ErrInvalidKey, key)
	}
	return section, name, nil
}

// Get returns the value of a "section.name" key.
func (c *RepoConfig) Get(key string) (string, bool, error) {
	section, name, err := splitKey(key)
	if err != nil {
		return "", false, err
	}
	if !c.file.HasSection(section) || !c.file.Section(section).HasKey(name) {
		return "", false, nil
	}
	return c.file.Section(section).Key(name).String(), true, nil
}

// Set stores a "section.name" key and saves the file.
func (c *RepoConfig) Set(key, value string) error {
	section, name, err := splitKey(key)
	if err != nil {
		return err
	}
	c.file.Section(section).Key(name).SetValue(value)
	if err := c.file.SaveTo(c.path); err != nil {
		return fmt.Errorf("saving repository config: %w", err)
	}
	return nil
}

func (c *RepoConfig) ID() string {
	return c.file.Section(sectionCore).Key(keyID).String()
}

// Compress reports whether new objects should be zstd compressed.
func (c *RepoConfig) Compress() bool {
	return c.file.Section(sectionCore).Key(keyCompress).MustBool(true)
}

func (c *RepoConfig) DefaultBranch() string {
	return c.file.Section(sectionCore).Key(keyDefaultBranchName).MustString(DefaultBranchName)
}
