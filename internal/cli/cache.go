package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached suggestions and results",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := cache.Open(ctx, cache.Options{
				Backend:  c.Config.Cache.Backend,
				Dir:      c.Config.Cache.Dir,
				RedisURL: c.Config.Cache.RedisURL,
			})
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			switch s := store.(type) {
			case *cache.FileCache:
				if err := s.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared file cache")
				printDetail("Directory: %s", s.Dir())
			case *cache.RedisCache:
				n, err := s.Clear(ctx, c.Config.Cache.Prefix)
				if err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Prefix: %s", c.Config.Cache.Prefix)
			default:
				printInfo("Cache is disabled")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case cache.BackendRedis:
				fmt.Fprintln(cmd.OutOrStdout(), c.Config.Cache.RedisURL)
			case cache.BackendNone:
				fmt.Fprintln(cmd.OutOrStdout(), "none")
			default:
				dir := c.Config.Cache.Dir
				if dir == "" {
					var err error
					if dir, err = cacheDir(); err != nil {
						return fmt.Errorf("get cache dir: %w", err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}
}
