// Package cli implements the hivedoc command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hivedoc/pkg/buildinfo"
	"github.com/matzehuels/hivedoc/pkg/cache"
	"github.com/matzehuels/hivedoc/pkg/config"
	"github.com/matzehuels/hivedoc/pkg/diagram"
	"github.com/matzehuels/hivedoc/pkg/errors"
	"github.com/matzehuels/hivedoc/pkg/observability"
	"github.com/matzehuels/hivedoc/pkg/render/nodelink"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "hivedoc"
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

	// configPath is set by the --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug level also routes build and
// cache events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetBuildHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "hivedoc renders eHive pipeline diagrams into Markdown documentation",
		Long:         `hivedoc builds HTML documentation from Markdown, turning hive_diagram blocks into side-by-side views of a pipeline configuration and its flow diagram.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (default ./"+config.DefaultFile+")")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration file. Without --config a missing
// hivedoc.toml falls back to defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath, false)
	}
	return config.Load(config.DefaultFile, true)
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the cache backend selected by cfg.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// newImageRenderer returns a caching Graphviz renderer. The caller closes
// the returned cache.
func (c *CLI) newImageRenderer(ctx context.Context, cfg config.Config, noCache bool) (*nodelink.Renderer, cache.Cache, error) {
	store, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s cache", cfg.Cache.Backend)
	}
	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Namespace)
	}
	r := nodelink.NewRenderer(store, keyer, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		r.TTL = cfg.Cache.TTL.Duration
	}
	return r, store, nil
}

// newScriptRenderer returns the generate_graph.pl runner for cfg.
func newScriptRenderer(cfg config.Config) *diagram.ScriptRenderer {
	return &diagram.ScriptRenderer{Timeout: cfg.RenderTimeout.Duration}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hivedoc/).
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
