// Package cli implements the sinkfill command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hurstaa/landlab/pkg/buildinfo"
	"github.com/hurstaa/landlab/pkg/cache"
	"github.com/hurstaa/landlab/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sinkfill"

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

	cfgPath string
	verbose bool
	cfg     *config.Config
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
		Use:   appName,
		Short: "Sinkfill fills depressions in elevation grids",
		Long: `Sinkfill removes closed depressions from raster elevation models so that every
node drains to the grid boundary. Lakes are filled flat to their spill elevation,
optionally with a small gradient toward the outlet.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "parameter file (TOML, YAML or JSON)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.fillCommand())
	root.AddCommand(c.pitsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// setup loads configuration and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := LogInfo
	if c.verbose {
		level = LogDebug
	} else if l, err := log.ParseLevel(cfg.Log.Level); err == nil {
		level = l
	}
	c.SetLogLevel(level)

	for _, w := range cfg.Validate() {
		c.Logger.Warn(w)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// config returns the loaded configuration, loading defaults if setup has
// not run.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg == nil {
		cfg, err := config.Load(c.cfgPath)
		if err != nil {
			return nil, err
		}
		c.cfg = cfg
	}
	return c.cfg, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

func (c *CLI) newCache(cfg *config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	dir, err := resolveCacheDir(cfg)
	if err != nil {
		c.Logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// keyer scopes keys by release so cached results never cross versions.
func keyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sinkfill/).
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

// resolveCacheDir prefers the configured directory over the XDG default.
func resolveCacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
