// Package config loads drevorod settings from defaults, an optional
// drevorod.toml file and DREVOROD_* environment variables, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/rank"
	"github.com/firemesscode/drevorod/pkg/store"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// DREVOROD_STORE_BACKEND=sqlite.
const EnvPrefix = "DREVOROD"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config holds all configuration for drevorod.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Store  store.Config `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Layout LayoutConfig `mapstructure:"layout"`
	Server ServerConfig `mapstructure:"server"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json or logfmt
}

// CacheConfig selects where layouts and artifacts are cached.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"`
	Dir      string `mapstructure:"dir"`
	RedisURL string `mapstructure:"redis_url"`
	// Prefix scopes keys so several trees can share one Redis.
	Prefix string `mapstructure:"prefix"`
}

// LayoutConfig holds the engine name and footprints.
type LayoutConfig struct {
	Engine         string `mapstructure:"engine"`
	layout.Options `mapstructure:",squash"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	// EditToken enables edit mode for requests bearing it. Empty means
	// the server is read-only.
	EditToken   string   `mapstructure:"edit_token"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// String masks the edit token.
func (s ServerConfig) String() string {
	return fmt.Sprintf("ServerConfig{ListenAddr:%s, EditToken:%s, CORSOrigins:%v}",
		s.ListenAddr, maskToken(s.EditToken), s.CORSOrigins)
}

func maskToken(tok string) string {
	const visible = 4
	if tok == "" {
		return ""
	}
	if len(tok) <= visible*2 {
		return "***"
	}
	return tok[:visible] + "****" + tok[len(tok)-visible:]
}

// Load reads configuration. When path is empty, drevorod.toml is looked up
// in $HOME/.config/drevorod and the working directory; a missing file is
// not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("drevorod")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "drevorod"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.backend", store.BackendMemory)
	v.SetDefault("store.path", "family.json")
	v.SetDefault("store.dsn", "drevorod.db")
	v.SetDefault("store.uri", "")
	v.SetDefault("store.database", "")
	v.SetDefault("store.username", "")
	v.SetDefault("store.password", "")
	v.SetDefault("store.empty", false)

	v.SetDefault("cache.backend", CacheFile)
	v.SetDefault("cache.dir", DefaultCacheDir())
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.prefix", "")

	v.SetDefault("layout.engine", rank.DefaultEngine)
	v.SetDefault("layout.node_width", layout.DefaultNodeWidth)
	v.SetDefault("layout.node_height", layout.DefaultNodeHeight)
	v.SetDefault("layout.union_size", layout.DefaultUnionSize)
	v.SetDefault("layout.rank_sep", layout.DefaultRankSep)
	v.SetDefault("layout.node_sep", layout.DefaultNodeSep)

	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.edit_token", "")
	v.SetDefault("server.cors_origins", []string{"*"})
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if !slices.Contains([]string{"text", "json", "logfmt"}, c.Log.Format) {
		return fmt.Errorf("log.format must be text, json or logfmt, got %q", c.Log.Format)
	}
	if !store.ValidBackend(c.Store.Backend) {
		return fmt.Errorf("store.backend must be one of %v, got %q", store.Backends(), c.Store.Backend)
	}
	switch c.Store.Backend {
	case store.BackendMongo, store.BackendNeo4j:
		if c.Store.URI == "" {
			return fmt.Errorf("store.uri must be set for the %s backend", c.Store.Backend)
		}
	}
	switch c.Cache.Backend {
	case CacheNone, "":
	case CacheFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir must not be empty")
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url must not be empty")
		}
	default:
		return fmt.Errorf("cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if !rank.Valid(c.Layout.Engine) {
		return fmt.Errorf("layout.engine must be one of %v, got %q", rank.Engines(), c.Layout.Engine)
	}
	for name, v := range map[string]float64{
		"layout.node_width":  c.Layout.NodeWidth,
		"layout.node_height": c.Layout.NodeHeight,
		"layout.union_size":  c.Layout.UnionSize,
		"layout.rank_sep":    c.Layout.RankSep,
		"layout.node_sep":    c.Layout.NodeSep,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be greater than 0", name)
		}
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	return nil
}

// DefaultCacheDir returns the per-user cache directory for drevorod.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(homeDir(), ".cache", "drevorod")
	}
	return filepath.Join(dir, "drevorod")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
