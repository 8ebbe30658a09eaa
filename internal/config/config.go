// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds user-level settings. Values come from defaults, then
// $HOME/.gitlet/config.{yaml,json,toml}, then GITLET_* environment variables.
type Config struct {
	LogLevel    string      `mapstructure:"log_level"` // debug, info, warn, error
	Development bool        `mapstructure:"development"`
	CacheSize   int         `mapstructure:"cache_size"`
	Compression Compression `mapstructure:"compression"`
}

type Compression struct {
	MinSize int `mapstructure:"min_size"`
	Level   int `mapstructure:"level"` // 1=fastest .. 4=best
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("development", false)
	v.SetDefault("cache_size", 1024)
	v.SetDefault("compression.min_size", 1024)
	v.SetDefault("compression.level", 2)
}

// Default returns the settings used when no file or environment overrides
// are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the settings file at path, or searches $HOME/.gitlet when path
// is empty. A missing file in the search location is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GITLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("finding home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".gitlet"))
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("cache_size must be positive, got %d", cfg.CacheSize)
	}

	return &cfg, nil
}
