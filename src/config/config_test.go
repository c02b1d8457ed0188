package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tariff-observer/src/models"
	"tariff-observer/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
name: test-observer
port: 9090
analysis:
  compare_from: 2021-01
  compare_to: "2024 March"
sources:
  - name: trade
    kind: trade_balance
    location: ./trade.csv
    panel: trade_china
  - name: news
    kind: news
    location: ./news.csv
    encoding: iso-8859-1
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-observer", cfg.Name)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, utils.DefaultHost, cfg.Host)
	assert.Equal(t, "sqlite", cfg.Cache.Type)
	assert.Equal(t, ":memory:", cfg.Cache.DBPath)
	assert.Equal(t, 0, cfg.Network.MaxRetries)

	assert.Equal(t, models.NewYearMonth(2021, 1), cfg.Analysis.CompareFrom)
	assert.Equal(t, models.NewYearMonth(2024, 3), cfg.Analysis.CompareTo)
	assert.Equal(t, utils.DefaultStrictCutoff, cfg.Analysis.StrictCutoff)
	assert.Equal(t, 3, cfg.Analysis.TopN)

	p, ok := cfg.Panel("trade_china")
	require.True(t, ok, "referenced panel is declared implicitly")
	assert.True(t, p.Compare)
	assert.True(t, p.FillForward())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TARIFF_PORT", "9191")
	t.Setenv("TARIFF_CACHE_TYPE", "redis")
	t.Setenv("TARIFF_CACHE_REDIS_ADDR", "localhost:6379")
	t.Setenv("TARIFF_NETWORK_MAX_RETRIES", "2")
	t.Setenv("TARIFF_ANALYSIS_COMPARE_TO", "2025-01")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Network.MaxRetries)
	assert.Equal(t, models.NewYearMonth(2025, 1), cfg.Analysis.CompareTo)
}

func TestValidateRejectsBadSources(t *testing.T) {
	cases := map[string]string{
		"unknown kind": `
sources:
  - {name: a, kind: weather, location: x, panel: p}`,
		"missing entity key": `
sources:
  - {name: a, kind: daily_price, location: x, panel: p}`,
		"duplicate source": `
sources:
  - {name: a, kind: tariff, location: x, panel: p}
  - {name: a, kind: tariff, location: y, panel: p}`,
		"bad encoding": `
sources:
  - {name: a, kind: tariff, location: x, panel: p, encoding: ebcdic}`,
		"inverted calendar": `
panels:
  - {name: p, calendar_start: 2024-01, calendar_end: 2020-01}`,
		"bad cache": `
cache: {type: memcached}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateRejectsCollidingEntityKeys(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"two trade tables in one panel", `
sources:
  - {name: hs12_us, kind: trade_balance, location: x, panel: products}
  - {name: hs39_us, kind: trade_balance, location: y, panel: products}
  - {name: csi300, kind: daily_price, location: z, panel: correlation, entity_key: CSI 300}`, true},
		{"trade tables told apart by prefix", `
sources:
  - {name: hs12_us, kind: trade_balance, location: x, panel: products, key_prefix: "HS12 "}
  - {name: hs39_us, kind: trade_balance, location: y, panel: products, key_prefix: "HS39 "}`, false},
		{"trade tables in separate panels", `
sources:
  - {name: hs12_us, kind: trade_balance, location: x, panel: hs12_us}
  - {name: hs39_us, kind: trade_balance, location: y, panel: hs39_us}`, false},
		{"shared entity key", `
sources:
  - {name: a, kind: daily_price, location: x, panel: p, entity_key: CSI 300}
  - {name: b, kind: daily_price, location: y, panel: p, entity_key: CSI 300}`, true},
		{"shared indicator", `
sources:
  - {name: a, kind: yearly_indicator, location: x, panel: p, indicator: GDP}
  - {name: b, kind: yearly_indicator, location: y, panel: p, indicator: GDP}`, true},
		{"distinct indicators", `
sources:
  - {name: a, kind: yearly_indicator, location: x, panel: p, indicator: GDP}
  - {name: b, kind: yearly_indicator, location: y, panel: p, indicator: Inflation}`, false},
		{"trade partners could shadow a price series", `
sources:
  - {name: a, kind: trade_balance, location: x, panel: p}
  - {name: b, kind: daily_price, location: y, panel: p, entity_key: World}`, true},
		{"suffixed trade next to prices", `
sources:
  - {name: a, kind: trade_balance, location: x, panel: p, key_suffix: " (trade)"}
  - {name: b, kind: daily_price, location: y, panel: p, entity_key: World}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "entity key")
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(path))

	reloaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Analysis, reloaded.Analysis)
	assert.Len(t, reloaded.Sources, 2)
}

func TestDefaultConfigFileLoads(t *testing.T) {
	path := filepath.Join("..", "..", "config", "default.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("default config not present")
	}
	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Sources)
	_, ok := cfg.Panel("correlation")
	assert.True(t, ok)

	products := 0
	for _, src := range cfg.Sources {
		if !strings.HasPrefix(src.Name, "product_") {
			continue
		}
		products++
		assert.Equal(t, models.KindTradeBalance, src.Kind)
		p, ok := cfg.Panel(src.Panel)
		require.True(t, ok, src.Name)
		assert.True(t, p.Compare, src.Name)
		assert.Contains(t, p.Title, "Trade Balance of HS Code", src.Name)
	}
	assert.Equal(t, 14, products)
	hs85, _ := cfg.Panel("hs85_us")
	assert.Equal(t, "Trade Balance of HS Code 85 (Electrical Machinery) - US Towards Other Countries", hs85.Title)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
