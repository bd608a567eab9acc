package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/matzehuels/soup/internal/config"
	"github.com/matzehuels/soup/pkg/buildinfo"
	"github.com/matzehuels/soup/pkg/cache"
	"github.com/matzehuels/soup/pkg/deps"
	"github.com/matzehuels/soup/pkg/fsys"
	"github.com/matzehuels/soup/pkg/pipeline"
	"github.com/matzehuels/soup/pkg/recipe"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "soup"

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

	configFile string
	// workDir and profileDir override the config search locations.
	workDir    string
	profileDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Soup resolves package recipes into layered dependency graphs",
		Long:         `Soup reads Recipe.sml package manifests, resolves their Build, Test and Runtime dependencies level by level, and serves the result as a package lookup.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			installHooks(c.Logger)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (soup.toml, soup.yaml)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.packagesCommand())
	root.AddCommand(c.recipeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner
// =============================================================================

// loadConfig loads settings, applying the flags of cmd that were set.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, *koanf.Koanf, error) {
	return config.Load(config.Options{
		File:       c.configFile,
		Flags:      cmd.Flags(),
		WorkDir:    c.workDir,
		ProfileDir: c.profileDir,
	})
}

// addResolveFlags registers the resolution settings on cmd. Their values
// are read back through loadConfig.
func addResolveFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("workers", deps.DefaultWorkers, "concurrent manifest loads per level")
	f.Int("max-depth", deps.DefaultMaxDepth, "maximum number of dependency levels")
	f.Int("max-nodes", deps.DefaultMaxNodes, "maximum number of resolved packages")
	f.Bool("allow-cycles", false, "expand cyclic references until --max-depth instead of skipping them")
	f.String("packages-root", "", "directory holding external packages (default ~/.soup/packages)")
}

// openCache opens the configured cache. An unreachable remote backend
// degrades to no caching.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	cc := cfg.Cache
	if noCache {
		cc.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, cc)
	if errors.Is(err, cache.ErrUnavailable) {
		c.Logger.Warn("cache unavailable, continuing without cache", "backend", cc.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, err
}

// newRunner creates a pipeline runner over the OS file system.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(fsys.OS{}, store, cfg.Cache.Keyer(), c.Logger), nil
}

// pipelineOptions converts the settings for a run rooted at rootPath.
func (c *CLI) pipelineOptions(cfg *config.Config, rootPath string, refresh bool) pipeline.Options {
	d := cfg.DepsOptions()
	return pipeline.Options{
		RootPath:     rootPath,
		Workers:      d.Workers,
		MaxDepth:     d.MaxDepth,
		MaxNodes:     d.MaxNodes,
		AllowCycles:  d.AllowCycles,
		PackagesRoot: d.PackagesRoot,
		Refresh:      refresh,
		TTL:          cfg.CacheTTL(),
		Logger:       c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// recipePath resolves the optional recipe argument to an absolute manifest
// path. A directory names the Recipe.sml inside it; no argument means the
// working directory.
func recipePath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, recipe.RecipeFileName)
	}
	return filepath.Abs(path)
}
