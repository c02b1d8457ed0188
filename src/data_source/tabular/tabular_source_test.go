package tabular

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"tariff-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetwork struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  int
}

func (f *fakeNetwork) Fetch(ctx context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	body, ok := f.bodies[location]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

type mapCache struct {
	data   map[string][]byte
	getErr error
}

func cacheKey(location string, bucket int64) string {
	return fmt.Sprintf("%s@%d", location, bucket)
}

func (c *mapCache) Initialize(context.Context) error { return nil }
func (c *mapCache) Get(_ context.Context, location string, bucket int64) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	d, ok := c.data[cacheKey(location, bucket)]
	return d, ok, nil
}
func (c *mapCache) Put(_ context.Context, location string, bucket int64, data []byte) error {
	c.data[cacheKey(location, bucket)] = data
	return nil
}
func (c *mapCache) CleanupOldData(context.Context, int64) error { return nil }
func (c *mapCache) Close() error                                { return nil }

const tradeURL = "https://example.test/trade.csv"

func newSource(net *fakeNetwork, cache *mapCache) *TabularSource {
	cfg := &models.MConfig{Cache: models.MCacheConfig{BucketSeconds: 3600}}
	src := NewTabularSource(cfg, models.MSourceConfig{
		Name:     "trade_us",
		Kind:     models.KindTradeBalance,
		Location: tradeURL,
		Panel:    "trade_us",
	}, net, cache)
	src.Now = func() time.Time { return time.Date(2025, 4, 1, 10, 15, 0, 0, time.UTC) }
	return src
}

func TestLoadUsesCacheInsideBucket(t *testing.T) {
	net := &fakeNetwork{bodies: map[string]string{tradeURL: "Partners,2020-M01\nWorld,5\n"}}
	src := newSource(net, &mapCache{data: map[string][]byte{}})

	res, fromCache, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, res.Series, 1)
	assert.Equal(t, "World", res.Series[0].EntityKey)

	res, fromCache, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Len(t, res.Series, 1)
	assert.Equal(t, 1, net.calls)

	src.Now = func() time.Time { return time.Date(2025, 4, 1, 11, 0, 0, 0, time.UTC) }
	_, fromCache, err = src.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache, "next bucket refetches")
	assert.Equal(t, 2, net.calls)
}

func TestLoadCacheErrorIsInfoDiagnostic(t *testing.T) {
	net := &fakeNetwork{bodies: map[string]string{tradeURL: "Partners,2020-M01\nWorld,5\n"}}
	src := newSource(net, &mapCache{data: map[string][]byte{}, getErr: errors.New("cache down")})

	res, fromCache, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, models.DiagCache, res.Diagnostics[0].Kind)
	assert.Equal(t, models.SeverityInfo, res.Diagnostics[0].Severity)
}

func TestLoadFetchError(t *testing.T) {
	src := newSource(&fakeNetwork{bodies: map[string]string{}}, &mapCache{data: map[string][]byte{}})
	_, _, err := src.Load(context.Background())
	assert.Error(t, err)
}

func TestLocalLocationBypassesCache(t *testing.T) {
	net := &fakeNetwork{bodies: map[string]string{"data/trade.csv": "Partners,2020-M01\nWorld,5\n"}}
	cache := &mapCache{data: map[string][]byte{}}
	src := newSource(net, cache)
	src.Source.Location = "data/trade.csv"

	_, fromCache, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Empty(t, cache.data)
}

func TestBucket(t *testing.T) {
	src := newSource(&fakeNetwork{}, nil)
	at := time.Unix(7200+59, 0)
	assert.Equal(t, int64(2), src.Bucket(at))
	src.Config.Cache.BucketSeconds = 0
	assert.Equal(t, int64(7259), src.Bucket(at))
}
