package storage

import (
	"context"
	"fmt"

	"tariff-observer/src/interfaces"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"
)

// ISourceRegistry is implemented by caches that also record the declared sources.
type ISourceRegistry interface {
	RegisterSources(ctx context.Context, sources []models.MSourceConfig) error
}

// -----------------------------------------------------------------------------

// NoCache never hits. Used when cache.type is "none".
type NoCache struct{}

func (NoCache) Initialize(context.Context) error { return nil }
func (NoCache) Get(context.Context, string, int64) ([]byte, bool, error) {
	return nil, false, nil
}
func (NoCache) Put(context.Context, string, int64, []byte) error { return nil }
func (NoCache) CleanupOldData(context.Context, int64) error      { return nil }
func (NoCache) Close() error                                     { return nil }

// -----------------------------------------------------------------------------

// NewFetchCache builds the cache selected by cache.type. It is not initialized.
func NewFetchCache(cfg *models.MConfig, log *logger.Logger) (interfaces.IFetchCache, error) {
	switch cfg.Cache.Type {
	case "sqlite", "":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "redis":
		return NewRedisCache(cfg, log), nil
	case "none":
		return NoCache{}, nil
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
}
