// Package dashboardtest provides a small on-disk source set for tests of
// the packages that serve dashboards.
package dashboardtest

import (
	"path/filepath"
	"runtime"
	"testing"

	"tariff-observer/src/config"
	"tariff-observer/src/models"
)

// TestdataDir is the absolute path of src/dashboard/testdata.
func TestdataDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "testdata")
}

// Config declares a trade panel, a correlation panel, the news feed and one
// source whose file does not exist.
func Config(t testing.TB) *models.MConfig {
	t.Helper()
	dir := TestdataDir()
	forward := false

	cfg := &config.Config{MConfig: &models.MConfig{
		Name:     "tariff-observer-test",
		LogLevel: "error",
		Cache:    models.MCacheConfig{Type: "none"},
		Panels: []models.MPanelConfig{
			{Name: "trade_china", Compare: true, ForwardFill: &forward},
			{Name: "trade_us", Title: "US trade balance by partner", Compare: true, ForwardFill: &forward},
			{Name: "correlation", Correlate: true},
		},
		Sources: []models.MSourceConfig{
			{Name: "trade_balance_china", Kind: models.KindTradeBalance, Panel: "trade_china", Location: filepath.Join(dir, "missing.csv")},
			{Name: "trade_balance_us", Kind: models.KindTradeBalance, Panel: "trade_us", Location: filepath.Join(dir, "trade_us.csv")},
			{Name: "csi300", Kind: models.KindDailyPrice, Panel: "correlation", EntityKey: "CSI 300", BackwardFill: true, Location: filepath.Join(dir, "csi300.csv")},
			{Name: "sp500", Kind: models.KindDailyPrice, Panel: "correlation", EntityKey: "S&P 500", BackwardFill: true, Location: "file://" + filepath.Join(dir, "sp500.csv")},
			{Name: "news_sentiment", Kind: models.KindNews, Location: filepath.Join(dir, "news.csv")},
		},
	}}
	return validated(t, cfg)
}

// ProductConfig declares two HS-code product pages, one per panel. The
// HS 12 file has no Partners column.
func ProductConfig(t testing.TB) *models.MConfig {
	t.Helper()
	dir := TestdataDir()
	forward := false

	cfg := &config.Config{MConfig: &models.MConfig{
		Name:     "tariff-observer-products",
		LogLevel: "error",
		Cache:    models.MCacheConfig{Type: "none"},
		Panels: []models.MPanelConfig{
			{Name: "hs12_cn", Title: "Trade Balance of HS Code 12 (Seed, fruit and other grains) - China Towards Other Countries", Compare: true, ForwardFill: &forward},
			{Name: "hs85_us", Title: "Trade Balance of HS Code 85 (Electrical Machinery) - US Towards Other Countries", Compare: true, ForwardFill: &forward},
		},
		Sources: []models.MSourceConfig{
			{Name: "product_12_cn", Kind: models.KindTradeBalance, Panel: "hs12_cn", Location: filepath.Join(dir, "combined_12_CN.csv")},
			{Name: "product_85_us", Kind: models.KindTradeBalance, Panel: "hs85_us", Location: filepath.Join(dir, "combined_85_US.csv")},
		},
	}}
	return validated(t, cfg)
}

func validated(t testing.TB, cfg *config.Config) *models.MConfig {
	t.Helper()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return cfg.MConfig
}
