package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the resolved document cache",
		Long: `Inspect and clear the resolved document cache.

Resolved models and rendered diagrams are cached so that repeated commands
on an unchanged model skip resolution. Entries are revalidated against the
source files on every load, so clearing is only needed to reclaim space.`,
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the cache backend and its usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			printKeyValue("Backend", cfg.Backend)
			ttl := cache.TTLDoc
			if cfg.TTL > 0 {
				ttl = cfg.TTL
			}
			printKeyValue("TTL", ttl.String())
			if cfg.Prefix != "" {
				printKeyValue("Prefix", cfg.Prefix)
			}

			switch cfg.Backend {
			case backendRedis:
				printKeyValue("URL", cfg.RedisURL)
				return nil
			case backendNone:
				return nil
			}

			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			printKeyValue("Directory", dir)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printKeyValue("Entries", "0")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			entries, size, err := fc.Usage()
			if err != nil {
				return err
			}
			printKeyValue("Entries", fmt.Sprintf("%d (%s)", entries, formatBytes(size)))
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all file cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == backendRedis {
				printWarning("Redis entries expire through their TTL; only the file cache is cleared")
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Removed %d entries", count)
			printDetail("%s", dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
