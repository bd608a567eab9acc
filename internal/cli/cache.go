package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/soup/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear [recipe]",
		Short: "Clear cached snapshots",
		Long: `Clear cached snapshots.

With a recipe argument only the snapshot of that recipe, for the current
resolution settings, is removed; this works with every backend. Without
an argument the whole file cache is cleared.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if len(args) > 0 {
				root, err := recipePath(args)
				if err != nil {
					return err
				}
				runner, err := c.newRunner(ctx, cfg, false)
				if err != nil {
					return err
				}
				defer runner.Close()
				if err := runner.Invalidate(ctx, c.pipelineOptions(cfg, root, false)); err != nil {
					return err
				}
				printSuccess(w, "Removed cached snapshot")
				printDetail(w, "Recipe: %s", root)
				return nil
			}

			store, err := c.openCache(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer store.Close()

			switch fc := cache.Unwrap(store).(type) {
			case *cache.FileCache:
				if err := fc.Clear(); err != nil {
					return err
				}
				printSuccess(w, "Cleared snapshot cache")
				printDetail(w, "Directory: %s", fc.Dir())
				return nil
			case *cache.NullCache:
				printInfo(w, "Cache is disabled")
				return nil
			}
			return fmt.Errorf("clearing every entry is only supported by the file backend; pass a recipe to remove its snapshot")
		},
	}
	addResolveFlags(cmd)
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch cfg.Cache.Backend {
			case cache.BackendRedis:
				fmt.Fprintf(w, "redis://%s/%d\n", cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
			case cache.BackendMongo:
				fmt.Fprintf(w, "%s (%s.%s)\n", cfg.Cache.Mongo.URI, cfg.Cache.Mongo.Database, cfg.Cache.Mongo.Collection)
			case cache.BackendNone:
				printInfo(cmd.ErrOrStderr(), "Cache is disabled")
			default:
				fmt.Fprintln(w, cfg.Cache.Dir)
			}
			return nil
		},
	}
}
