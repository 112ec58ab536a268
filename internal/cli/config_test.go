package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

var configEnv = []string{
	"SLINKTREE_CACHE_BACKEND",
	"SLINKTREE_CACHE_DIR",
	"SLINKTREE_REDIS_URL",
	"SLINKTREE_WORKERS",
}

// isolateConfig points every config source at empty temporary locations.
func isolateConfig(t *testing.T) string {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Chdir(t.TempDir())
	for _, k := range configEnv {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
	return configHome
}

func writeConfig(t *testing.T, configHome, body string) string {
	t.Helper()
	path := filepath.Join(configHome, appName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Backend != backendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, backendFile)
	}
	if cfg.Resolve.Workers != pipeline.DefaultWorkers {
		t.Errorf("Resolve.Workers = %d, want %d", cfg.Resolve.Workers, pipeline.DefaultWorkers)
	}
	if cfg.Resolve.InferPorts {
		t.Error("Resolve.InferPorts should default to false")
	}
	if cfg.Resolve.Timeout != pipeline.DefaultTimeout {
		t.Errorf("Resolve.Timeout = %v, want %v", cfg.Resolve.Timeout, pipeline.DefaultTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	home := isolateConfig(t)
	writeConfig(t, home, `
[cache]
backend = "none"
dir = "/var/cache/models"
prefix = "ci:"
ttl = "72h"

[resolve]
workers = 8
infer_ports = true
timeout = "30s"
`)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Backend != backendNone {
		t.Errorf("Cache.Backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != "/var/cache/models" || cfg.Cache.Prefix != "ci:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 72*time.Hour {
		t.Errorf("Cache.TTL = %v, want 72h", cfg.Cache.TTL)
	}
	if cfg.Resolve.Workers != 8 || !cfg.Resolve.InferPorts || cfg.Resolve.Timeout != 30*time.Second {
		t.Errorf("Resolve = %+v", cfg.Resolve)
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	isolateConfig(t)

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing explicit config should fail")
	}

	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[resolve]\nworkers = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig(%s) error: %v", path, err)
	}
	if cfg.Resolve.Workers != 2 {
		t.Errorf("Resolve.Workers = %d, want 2", cfg.Resolve.Workers)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	home := isolateConfig(t)
	writeConfig(t, home, "[cache]\nbackend = \"file\"\ncolour = \"red\"\n")

	_, err := loadConfig("")
	if err == nil || !strings.Contains(err.Error(), "cache.colour") {
		t.Errorf("loadConfig() error = %v, want unknown key cache.colour", err)
	}
}

func TestLoadConfigSyntaxError(t *testing.T) {
	home := isolateConfig(t)
	writeConfig(t, home, "[cache\n")

	if _, err := loadConfig(""); err == nil {
		t.Error("malformed config should fail")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	home := isolateConfig(t)
	writeConfig(t, home, "[cache]\nbackend = \"file\"\n")
	t.Setenv("SLINKTREE_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("SLINKTREE_WORKERS", "3")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Backend != backendRedis {
		t.Errorf("Cache.Backend = %q, want redis when a Redis URL is set", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Resolve.Workers != 3 {
		t.Errorf("Resolve.Workers = %d, want 3", cfg.Resolve.Workers)
	}

	t.Setenv("SLINKTREE_CACHE_BACKEND", "none")
	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Backend != backendNone {
		t.Errorf("explicit backend should win over Redis URL, got %q", cfg.Cache.Backend)
	}

	t.Setenv("SLINKTREE_WORKERS", "many")
	if _, err := loadConfig(""); err == nil {
		t.Error("non-numeric SLINKTREE_WORKERS should fail")
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	isolateConfig(t)
	if err := os.WriteFile(".env", []byte("SLINKTREE_CACHE_DIR=/from/dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Dir != "/from/dotenv" {
		t.Errorf("Cache.Dir = %q, want value from .env", cfg.Cache.Dir)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis with url", func(c *Config) { c.Cache.Backend = backendRedis; c.Cache.RedisURL = "redis://x" }, false},
		{"redis without url", func(c *Config) { c.Cache.Backend = backendRedis }, true},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"zero workers", func(c *Config) { c.Resolve.Workers = 0 }, true},
		{"negative timeout", func(c *Config) { c.Resolve.Timeout = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}
