// Package cli implements the drevorod command-line interface.
//
// Commands read the family from the store selected in the configuration
// (see internal/config); --store and --data override it per invocation:
//
//	drevorod init family.json
//	drevorod --data family.json person add --first Анна --last Иванова
//	drevorod --data family.json render -f svg,png -o tree
//	drevorod serve --store sqlite
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/firemesscode/drevorod/internal/config"
	"github.com/firemesscode/drevorod/pkg/buildinfo"
	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/render"
	"github.com/firemesscode/drevorod/pkg/store"
)

const appName = "drevorod"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Verbose forces debug logging regardless of log.level.
	Verbose bool

	configPath string
	backend    string
	dataPath   string
	cfg        *config.Config
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
		Short:        "Drevorod lays out and renders family trees",
		Long:         `Drevorod keeps a family of people and their parent/child and spouse relationships, and lays them out as a layered tree with couples joined by union nodes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if c.Verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "config file (default: drevorod.toml in ~/.config/drevorod or .)")
	pf.StringVar(&c.backend, "store", "", "store backend: "+strings.Join(store.Backends(), ", "))
	pf.StringVar(&c.dataPath, "data", "", "family file (.json or .toml); implies --store file")
	pf.BoolVarP(&c.Verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.personCommand())
	root.AddCommand(c.relCommand())
	root.AddCommand(c.unionCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once and applies the global flag
// overrides and the configured log settings.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.dataPath != "" {
		cfg.Store.Backend = store.BackendFile
		cfg.Store.Path = c.dataPath
	} else if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil && !c.Verbose {
		c.Logger.SetLevel(level)
	}
	if c.Verbose {
		c.Logger.SetLevel(LogDebug)
	}
	setFormat(c.Logger, cfg.Log.Format)

	c.cfg = cfg
	return cfg, nil
}

// openStore opens the configured store.
func (c *CLI) openStore(ctx context.Context) (*store.Observed, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	sc := cfg.Store
	sc.Logger = c.Logger
	c.Logger.Debug("opening store", "backend", sc.Backend)
	return store.Open(ctx, sc)
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(c.newCache(ctx, cfg.Cache, noCache), keyer, c.Logger), nil
}

// newCache builds the configured cache. An unusable backend degrades to
// no caching with a warning.
func (c *CLI) newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	switch cfg.Backend {
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Dir, "error", err)
			return cache.NewNullCache()
		}
		return fc
	case config.CacheRedis:
		var rc *cache.RedisCache
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			rc, err = cache.NewRedisCache(ctx, cache.RedisOptions{URL: cfg.RedisURL, DialTimeout: 3 * time.Second})
			return err
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "error", err)
			return cache.NewNullCache()
		}
		return rc
	}
	return cache.NewNullCache()
}

// pipelineOptions returns the configured engine and footprints.
func (c *CLI) pipelineOptions() (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Engine: cfg.Layout.Engine, Layout: cfg.Layout.Options}, nil
}

// parseFormats parses a comma-separated format list. Empty means svg.
func parseFormats(s string) ([]render.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var out []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
