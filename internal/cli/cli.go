// Package cli implements the slinktree command-line interface.
//
// The commands load a model (system XML file, .slx archive or binary
// container) through a [pipeline.Runner] and then print, export, pack or
// render the resolved tree:
//
//   - tree: print the hierarchy of nested systems
//   - json: export the resolved model as JSON
//   - pack: write a binary container for fast reloading
//   - find: list blocks of a given type with their block paths
//   - render: draw one system level as DOT or SVG
//   - bench: compare XML resolution with binary container loading
//   - cache: inspect and clear the document cache
//
// Settings come from a TOML config file, a .env file and SLINKTREE_*
// environment variables, in increasing order of precedence. Flags override
// all of them.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/buildinfo"
	"github.com/ulikoehler/slinktree/pkg/cache"
	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "slinktree"

	// envPrefix prefixes every environment variable the CLI reads.
	envPrefix = "SLINKTREE_"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "slinktree loads hierarchical block-diagram models",
		Long: `slinktree reads block-diagram models stored as system XML files or .slx
archives, follows every subsystem reference into one resolved tree, and
caches the result as a compact binary container.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/slinktree/config.toml)")

	root.AddCommand(c.treeCommand())
	root.AddCommand(c.jsonCommand())
	root.AddCommand(c.packCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	if c.Config.Cache.TTL > 0 {
		runner.TTL = c.Config.Cache.TTL
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(pingCtx, c.Config.Cache.RedisURL, appName+":")
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// standard (~/.cache/slinktree/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Load Flags
// =============================================================================

// loadFlags are the flags shared by every command that loads a model.
type loadFlags struct {
	noCache    bool
	refresh    bool
	workers    int
	inferPorts bool
	timeout    time.Duration
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the document cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-resolve even when a cached document is valid")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "parallel file parsers (default from config)")
	cmd.Flags().BoolVar(&f.inferPorts, "infer-ports", false, "add undeclared ports referenced by lines")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "resolution deadline (default from config)")
}

// options merges flags over the config for input.
func (f *loadFlags) options(cmd *cobra.Command, cfg *Config, input string) pipeline.Options {
	opts := pipeline.Options{
		Input:      input,
		Workers:    cfg.Resolve.Workers,
		InferPorts: cfg.Resolve.InferPorts,
		Timeout:    cfg.Resolve.Timeout,
		Refresh:    f.refresh,
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
	if cmd.Flags().Changed("infer-ports") {
		opts.InferPorts = f.inferPorts
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = f.timeout
	}
	return opts
}

// load runs the pipeline for one input with a spinner.
func (c *CLI) load(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Loading %s...", filepath.Base(opts.Input)))
	st := startStage(c.Logger, "load", "input", opts.Input)
	spinner.Start()
	result, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return nil, err
	}
	spinner.Stop()
	st.end("kind", result.Kind, "files", result.Stats.Files, "cached", result.CacheHit)
	return result, nil
}

// withRunner opens a runner, loads input and calls fn with the result.
func (c *CLI) withRunner(cmd *cobra.Command, flags *loadFlags, input string, fn func(*pipeline.Runner, *pipeline.Result) error) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := c.load(ctx, runner, flags.options(cmd, c.Config, input))
	if err != nil {
		return err
	}
	return fn(runner, result)
}
