package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/internal/config"
	"github.com/firemesscode/drevorod/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.CacheFile:
				return clearFileCache(cfg.Cache.Dir)
			case config.CacheRedis:
				printWarning("Redis entries expire on their own; clear them with redis-cli if needed")
				printDetail("URL: %s", cfg.Cache.RedisURL)
			default:
				printInfo("Caching is disabled")
			}
			return nil
		},
	}
}

func clearFileCache(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if err := fc.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	printSuccess("Cleared the cache")
	printDetail("Directory: %s", dir)
	return nil
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == config.CacheRedis {
				fmt.Println(cfg.Cache.RedisURL)
				return nil
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}
