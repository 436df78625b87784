package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached layouts and artifacts",
		Long: `Remove all cached layouts and artifacts.

Clears the local cache directory, or every netgrid key in Redis when --redis
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL != "" {
				return c.clearRedis(cmd.Context(), redisURL)
			}
			return clearDir()
		},
	}
	cmd.Flags().StringVar(&redisURL, "redis", os.Getenv("NETGRID_REDIS_URL"), "clear the Redis cache at this redis:// URL")

	return cmd
}

func clearDir() error {
	dir, err := cacheDir()
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
		return fmt.Errorf("clear cache: %w", err)
	}

	printSuccess("Cleared %d cached entries", count)
	printDetail("Directory: %s", dir)
	return nil
}

func (c *CLI) clearRedis(ctx context.Context, url string) error {
	rc, err := cache.NewRedisCache(ctx, url, redisPrefix)
	if err != nil {
		return err
	}
	defer rc.Close()

	count, err := rc.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear redis cache: %w", err)
	}
	c.Logger.Debug("cleared redis cache", "url", url, "keys", count)

	printSuccess("Cleared %d cached entries", count)
	printDetail("Redis prefix: %s", redisPrefix)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
