package store

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/store/file"
	"github.com/firemesscode/drevorod/pkg/store/memory"
	"github.com/firemesscode/drevorod/pkg/store/mongo"
	"github.com/firemesscode/drevorod/pkg/store/neo4j"
	"github.com/firemesscode/drevorod/pkg/store/sqlite"
)

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendNeo4j  = "neo4j"
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendSQLite, BackendMongo, BackendNeo4j}
}

// Config selects and configures a backend. Only the fields the chosen
// backend reads need to be set.
type Config struct {
	Backend string `mapstructure:"backend"`

	// Path is the family file for the file backend.
	Path string `mapstructure:"path"`
	// DSN is the SQLite database path or DSN.
	DSN string `mapstructure:"dsn"`

	// URI, Database, Username and Password are used by mongo and neo4j.
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Empty seeds the memory backend with nothing instead of the demo
	// family.
	Empty bool `mapstructure:"empty"`

	Logger *log.Logger `mapstructure:"-"`
}

// Open connects the configured backend and wraps it in [Checked] and
// [Observed]. An empty backend name means the demo memory store.
func Open(ctx context.Context, cfg Config) (*Observed, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendMemory
	}

	var (
		raw Store
		err error
	)
	switch backend {
	case BackendMemory:
		if cfg.Empty {
			raw = memory.New(family.Snapshot{})
		} else {
			raw = memory.NewDemo()
		}
	case BackendFile:
		if err := errors.ValidatePath(cfg.Path); err != nil {
			return nil, err
		}
		raw, err = file.Open(cfg.Path)
	case BackendSQLite:
		if cfg.DSN == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "sqlite store needs a dsn")
		}
		raw, err = sqlite.Open(cfg.DSN, cfg.Logger)
	case BackendMongo:
		if cfg.URI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo store needs a uri")
		}
		raw, err = connect(ctx, func() (Store, error) { return mongo.Open(ctx, cfg.URI, cfg.Database) })
	case BackendNeo4j:
		if cfg.URI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "neo4j store needs a uri")
		}
		raw, err = connect(ctx, func() (Store, error) {
			return neo4j.Open(ctx, cfg.URI, cfg.Username, cfg.Password, cfg.Database)
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (want one of %v)", cfg.Backend, Backends())
	}
	if err != nil {
		return nil, err
	}
	if cfg.Logger != nil {
		cfg.Logger.Debug("store opened", "backend", backend)
	}
	return NewObserved(NewChecked(raw), backend), nil
}

// connect runs open with [cache.RetryWithBackoff], so a server that is
// still starting gets a few more attempts.
func connect(ctx context.Context, open func() (Store, error)) (Store, error) {
	var s Store
	err := cache.RetryWithBackoff(ctx, func() error {
		opened, err := open()
		if err != nil {
			return err
		}
		s = opened
		return nil
	})
	return s, err
}

// ValidBackend reports whether name is a supported backend.
func ValidBackend(name string) bool {
	return name == "" || slices.Contains(Backends(), name)
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*file.Store)(nil)
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*mongo.Store)(nil)
	_ Store = (*neo4j.Store)(nil)
)
