package kv

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tentkids/internal/config"
)

// Open builds the backend selected by cfg.KVBackend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.KVBackend {
	case "memory":
		logger.Info("Using in-memory kv store; state is lost on exit")
		return NewMemory(), nil
	case "", "sqlite":
		s, err := OpenSQLite(cfg.SQLitePath, cfg.KVNamespace)
		if err != nil {
			return nil, err
		}
		logger.Info("Opened sqlite kv store", zap.String("path", cfg.SQLitePath))
		return s, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires REDIS_ADDR")
		}
		r, err := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KVNamespace)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to redis kv store", zap.String("addr", cfg.RedisAddr))
		return r, nil
	case "postgres":
		if cfg.KVDatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires KV_DATABASE_URL")
		}
		p, err := NewPostgres(ctx, cfg.KVDatabaseURL, cfg.KVNamespace)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to postgres kv store")
		return p, nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.KVBackend)
	}
}
