// Package cli implements the critpath command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/buildinfo"
	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/config"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/suggest"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "critpath"

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

	// ConfigPath is set by --config; empty means the conventional locations.
	ConfigPath string
	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), Config: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Critpath finds the critical path and bottlenecks of a project plan",
		Long: `Critpath reads a task list (CSV or JSON), computes the longest chain of
dependent work, flags bottleneck tasks and can ask an LLM for mitigation
suggestions.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ~/.config/critpath/config.toml and .critpath.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.suggestCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.LoadDefault(c.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Cache.Backend == cache.BackendFile && cfg.Cache.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "cache", cfg.Cache.Backend, "provider", cfg.Suggest.Provider)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes the
// returned cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, cache.Cache, error) {
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Config.Cache.Prefix)
	s := suggest.New(c.Config.Suggest, store, keyer, c.Config.Cache.TTL.Std())
	return pipeline.NewRunner(store, keyer, s, c.Logger), store, nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, cache.Options{
		Backend:  c.Config.Cache.Backend,
		Dir:      c.Config.Cache.Dir,
		RedisURL: c.Config.Cache.RedisURL,
	})
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/critpath/).
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
