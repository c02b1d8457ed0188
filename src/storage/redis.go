package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------

// RedisCache keeps fetched bytes under expiring keys. Expiry replaces the
// bucket sweep done by the SQL caches.
type RedisCache struct {
	Config *models.MConfig
	Client *redis.Client
	Prefix string
	TTL    time.Duration
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisCache(cfg *models.MConfig, log *logger.Logger) *RedisCache {
	ttl := time.Duration(cfg.Cache.BucketSeconds*cfg.Cache.RetentionBuckets) * time.Second
	return &RedisCache{
		Config: cfg,
		Prefix: SchemaName(cfg.Name),
		TTL:    ttl,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Initialize(ctx context.Context) error {
	r.Client = redis.NewClient(&redis.Options{
		Addr:     r.Config.Cache.RedisAddr,
		Password: r.Config.Cache.RedisPassword,
		DB:       r.Config.Cache.RedisDB,
	})

	if err := r.Client.Ping(ctx).Err(); err != nil {
		r.Client.Close()
		return helpers.NewCacheError(fmt.Sprintf("connect to redis at %s", r.Config.Cache.RedisAddr), err)
	}

	r.Logger.Info("Successfully connected to Redis at %s", r.Config.Cache.RedisAddr)
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) key(location string, bucket int64) string {
	return fmt.Sprintf("%s:fetch:%d:%s", r.Prefix, bucket, location)
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Get(ctx context.Context, location string, bucket int64) ([]byte, bool, error) {
	data, err := r.Client.Get(ctx, r.key(location, bucket)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewCacheError("read fetch cache", err)
	}
	return data, true, nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Put(ctx context.Context, location string, bucket int64, data []byte) error {
	if err := r.Client.Set(ctx, r.key(location, bucket), data, r.TTL).Err(); err != nil {
		return helpers.NewCacheError("write fetch cache", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// CleanupOldData is a no-op: keys carry their own expiry.
func (r *RedisCache) CleanupOldData(ctx context.Context, oldest int64) error {
	r.Logger.Debug("Redis cache relies on key expiry (ttl %v), nothing to clean", r.TTL)
	return nil
}

// -----------------------------------------------------------------------------

func (r *RedisCache) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
