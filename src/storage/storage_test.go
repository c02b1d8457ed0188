package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.MConfig {
	return &models.MConfig{
		Name: "Tariff Observer",
		Cache: models.MCacheConfig{
			Type:             "sqlite",
			DBPath:           ":memory:",
			BucketSeconds:    60,
			RetentionBuckets: 2,
		},
	}
}

func TestSQLiteFetchCache(t *testing.T) {
	ctx := context.Background()
	db, err := NewAsyncSQLiteDB(testConfig(), logger.NewNopLogger("sqlite"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize(ctx))
	defer db.Close()

	_, ok, err := db.Get(ctx, "https://example.com/a.csv", 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Put(ctx, "https://example.com/a.csv", 10, []byte("v1")))
	require.NoError(t, db.Put(ctx, "https://example.com/a.csv", 10, []byte("v2")))
	require.NoError(t, db.Put(ctx, "https://example.com/a.csv", 12, []byte("v3")))

	data, ok, err := db.Get(ctx, "https://example.com/a.csv", 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", string(data))

	require.NoError(t, db.CleanupOldData(ctx, 11))
	_, ok, _ = db.Get(ctx, "https://example.com/a.csv", 10)
	assert.False(t, ok)
	data, ok, _ = db.Get(ctx, "https://example.com/a.csv", 12)
	assert.True(t, ok)
	assert.Equal(t, "v3", string(data))
}

func TestSQLiteRegisterSources(t *testing.T) {
	ctx := context.Background()
	db, _ := NewAsyncSQLiteDB(testConfig(), logger.NewNopLogger("sqlite"))
	require.NoError(t, db.Initialize(ctx))
	defer db.Close()

	sources := []models.MSourceConfig{
		{Name: "trade_us", Kind: models.KindTradeBalance, Panel: "trade_us", Location: "a.csv"},
		{Name: "news", Kind: models.KindNews, Location: "b.csv"},
	}
	require.NoError(t, db.RegisterSources(ctx, sources))
	sources[0].Location = "c.csv"
	require.NoError(t, db.RegisterSources(ctx, sources))

	var count int
	require.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count))
	assert.Equal(t, 2, count)

	var location string
	require.NoError(t, db.DB.QueryRow("SELECT location FROM sources WHERE name = ?", "trade_us").Scan(&location))
	assert.Equal(t, "c.csv", location)
}

func TestRedisFetchCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Cache.Type = "redis"
	cfg.Cache.RedisAddr = mr.Addr()

	cache := NewRedisCache(cfg, logger.NewNopLogger("redis"))
	require.NoError(t, cache.Initialize(ctx))
	defer cache.Close()
	assert.Equal(t, 120*time.Second, cache.TTL)

	require.NoError(t, cache.Put(ctx, "loc", 7, []byte("payload")))
	assert.True(t, mr.Exists("tariff_observer:fetch:7:loc"))

	data, ok, err := cache.Get(ctx, "loc", 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(data))

	_, ok, err = cache.Get(ctx, "loc", 8)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.CleanupOldData(ctx, 100))
	mr.FastForward(121 * time.Second)
	_, ok, err = cache.Get(ctx, "loc", 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisInitializeFails(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Cache.RedisAddr = mr.Addr()
	mr.Close()

	cache := NewRedisCache(cfg, logger.NewNopLogger("redis"))
	assert.Error(t, cache.Initialize(context.Background()))
}

func TestPostgresFetchCache(t *testing.T) {
	dsn := os.Getenv("TARIFF_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TARIFF_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	cfg := testConfig()
	cfg.Name = "tariff_observer_test"
	cfg.Cache.DBConnectionString = dsn

	db, err := NewPostgresDB(cfg, logger.NewNopLogger("postgres"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize(ctx))
	defer db.Close()

	require.NoError(t, db.Put(ctx, "loc", 1, []byte("x")))
	data, ok, err := db.Get(ctx, "loc", 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", string(data))
	require.NoError(t, db.CleanupOldData(ctx, 2))
	require.NoError(t, db.RegisterSources(ctx, []models.MSourceConfig{{Name: "s", Kind: models.KindTariff}}))
}

func TestNewFetchCache(t *testing.T) {
	log := logger.NewNopLogger("storage")
	cfg := testConfig()

	for typ, want := range map[string]interface{}{
		"sqlite":   &AsyncSQLiteDB{},
		"postgres": &PostgresDB{},
		"redis":    &RedisCache{},
		"none":     NoCache{},
	} {
		cfg.Cache.Type = typ
		cache, err := NewFetchCache(cfg, log)
		require.NoError(t, err, typ)
		assert.IsType(t, want, cache, typ)
	}

	cfg.Cache.Type = "memcached"
	_, err := NewFetchCache(cfg, log)
	assert.Error(t, err)
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "tariff_observer", SchemaName("Tariff Observer"))
	assert.Equal(t, "tariff_observer", SchemaName("  "))
	assert.Equal(t, "us_china_2025", SchemaName("US-China 2025!"))
}
