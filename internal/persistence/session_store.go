package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/config"
	"github.com/authkit-labs/auth-portal/internal/session"
)

// OpenSessionStore builds the configured session backend. The returned close
// function releases any connection the backend holds.
func OpenSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, func(), error) {
	noop := func() {}

	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), noop, nil
	case config.SessionBackendFile:
		logger.Debug("using file session store", zap.String("path", cfg.Session.FilePath))
		return session.NewFileStore(cfg.Session.FilePath), noop, nil
	case config.SessionBackendRedis:
		rdb, err := connectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		return session.NewRedisStore(rdb, cfg.Session.RedisPrefix, cfg.Session.Key), func() { _ = rdb.Close() }, nil
	case config.SessionBackendPostgres:
		pool, err := connectPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, noop, err
			}
		}
		return session.NewPostgresStore(pool, cfg.Session.Key), pool.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
