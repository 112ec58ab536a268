package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the CLI configuration file.
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[resolve]
//	workers = 8
//	infer_ports = false
//	timeout = "30s"
type Config struct {
	Cache   CacheConfig   `toml:"cache"`
	Resolve ResolveConfig `toml:"resolve"`
}

// CacheConfig selects and configures the document cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// ResolveConfig holds resolution defaults.
type ResolveConfig struct {
	Workers    int           `toml:"workers"`
	InferPorts bool          `toml:"infer_ports"`
	Timeout    time.Duration `toml:"timeout"`
}

// defaultConfig returns the settings used when no file is present. A line
// naming an undeclared port fails unless infer_ports is set.
func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{Backend: backendFile},
		Resolve: ResolveConfig{
			Workers: pipeline.DefaultWorkers,
			Timeout: pipeline.DefaultTimeout,
		},
	}
}

// configPath returns the default config file location.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads .env, the config file and environment overrides. An
// explicit path must exist; the default path may be missing.
func loadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.validate()
}

// applyEnv overrides settings from SLINKTREE_* variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv(envPrefix + "CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(envPrefix + "CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv(envPrefix + "REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
		if os.Getenv(envPrefix+"CACHE_BACKEND") == "" {
			c.Cache.Backend = backendRedis
		}
	}
	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		c.Resolve.Workers = n
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache backend %q requires redis_url", backendRedis)
		}
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Resolve.Workers < 1 {
		return fmt.Errorf("resolve.workers must be at least 1, got %d", c.Resolve.Workers)
	}
	if c.Resolve.Timeout < 0 {
		return fmt.Errorf("resolve.timeout must not be negative")
	}
	return nil
}
