// Package config loads modmill configuration.
//
// Settings come from three layers, each overriding the previous:
// built-in defaults, an optional TOML file
// (~/.config/modmill/config.toml by default), and MODMILL_* environment
// variables. The storage root is always explicit configuration; nothing
// in modmill reads the process working directory.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/modmill/modmill/pkg/errors"
)

// Backend names accepted for cache_backend.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Duration wraps time.Duration so it can be written as "24h" in TOML
// and in environment variables.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Redis holds connection settings for the redis cache backend.
type Redis struct {
	Addr     string `toml:"addr" env:"MODMILL_REDIS_ADDR"`
	Password string `toml:"password" env:"MODMILL_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"MODMILL_REDIS_DB"`
}

// Config is the resolved modmill configuration.
type Config struct {
	// Root is the pack storage root; every pack directory lives under it.
	Root string `toml:"root" env:"MODMILL_ROOT"`

	// CacheBackend selects the registry-response cache: file, redis, none.
	CacheBackend string `toml:"cache_backend" env:"MODMILL_CACHE_BACKEND"`

	// CacheDir is the directory for the file cache backend.
	CacheDir string `toml:"cache_dir" env:"MODMILL_CACHE_DIR"`

	// CacheTTL is how long registry responses stay fresh.
	CacheTTL Duration `toml:"cache_ttl" env:"MODMILL_CACHE_TTL"`

	Redis Redis `toml:"redis"`
}

// DefaultPath returns the default config file location,
// ~/.config/modmill/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "modmill", "config.toml"), nil
}

// Default returns the built-in configuration.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Root:         filepath.Join(home, ".local", "share", "modmill"),
		CacheBackend: BackendFile,
		CacheDir:     filepath.Join(home, ".cache", "modmill"),
		CacheTTL:     Duration{24 * time.Hour},
	}, nil
}

// Load builds the configuration: defaults, then the TOML file at path,
// then environment overrides. The file must exist — a caller who named
// a config file should hear about a typo, not silently get defaults.
// An empty path skips the file layer.
func Load(path string) (Config, error) {
	return load(path, true)
}

// LoadDefault is Load over the default config location, where a missing
// file simply means nothing is overridden.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Config{}, err
	}
	return load(path, false)
}

func load(path string, required bool) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	if path != "" {
		switch _, statErr := os.Stat(path); {
		case statErr == nil:
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing config %s", path)
			}
		case required:
			return Config{}, errors.New(errors.ErrCodeNotFound, "config file %s does not exist", path)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing environment")
	}

	switch cfg.CacheBackend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (file, redis, none)", cfg.CacheBackend)
	}
	return cfg, nil
}
