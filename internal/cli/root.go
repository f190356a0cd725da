package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pillarlog/internal/config"
	"pillarlog/internal/storage"
)

// Context is shared by all commands.
type Context struct {
	ConfigPath string
}

func (c *Context) loadConfig() (config.Config, error) {
	return config.Load(c.ConfigPath)
}

// openProvider builds the storage adapter selected by the config. The caller
// owns Close.
func openProvider(ctx context.Context, cfg config.Config) (storage.Provider, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SQLitePath), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return storage.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
