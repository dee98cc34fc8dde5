package repository

import (
	"context"
	"fmt"

	"pensionado/internal/config"
	"pensionado/internal/database"
	"pensionado/internal/domain"

	"github.com/rs/zerolog"
)

// NewKV builds the configured backend. The result is always the durable
// store itself; see WithFailover for the degraded-mode wrapper.
func NewKV(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.KVStore, error) {
	var (
		kv  domain.KVStore
		err error
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		kv = NewMemoryKV()
	case config.BackendFile:
		kv, err = NewFileKV(cfg.Storage.Path)
	case config.BackendSQLite:
		kv, err = database.NewDB(cfg.Storage.Path, logger)
	case config.BackendPostgres:
		kv, err = database.NewPostgresDB(cfg.Storage.DSN, logger)
	case config.BackendRedis:
		client := NewRedisClient(cfg.Redis)
		if err = Ping(ctx, client); err != nil {
			if !cfg.Storage.Failover {
				client.Close()
				return nil, err
			}
			logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unavailable, reservation writes will fail until it returns")
			err = nil
		}
		kv = NewRedisKV(client, cfg.App.Name)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	return kv, nil
}

// WithFailover wraps kv in a memory fallback when storage.failover is set.
// It is for data that may be lost, such as the notification inbox. The
// reservation table must use the durable store directly.
func WithFailover(cfg *config.Config, kv domain.KVStore, logger *zerolog.Logger) domain.KVStore {
	if !cfg.Storage.Failover || cfg.Storage.Backend == config.BackendMemory {
		return kv
	}
	return NewFailoverKV(kv, NewMemoryKV(), logger)
}
