package utils

import "tariff-observer/src/models"

// -----------------------------------------------------------------------------

// Analysis defaults reproduce the original dashboard pages: the correlation
// page aligns through 2025-01 and drops incomplete rows before 2020, the
// trade balance page compares June 2020 with March 2025 and annotates the
// top three movers.
var (
	DefaultCalendarEnd  = models.NewYearMonth(2025, 1)
	DefaultStrictCutoff = models.NewYearMonth(2020, 1)
	DefaultCompareFrom  = models.NewYearMonth(2020, 6)
	DefaultCompareTo    = models.NewYearMonth(2025, 3)
)

const (
	DefaultTopN                  = 3
	DefaultIndicatorStartYear    = 2020
	DefaultIndicatorEndYear      = 2024
	DefaultSentimentTopCountries = 10
	DefaultRefreshSeconds        = 3600

	DefaultCacheType        = "sqlite"
	DefaultCacheDBPath      = ":memory:"
	DefaultBucketSeconds    = 3600
	DefaultRetentionBuckets = 24

	DefaultRequestTimeout     = 30
	DefaultConcurrentRequests = 4
	DefaultUserAgent          = "tariff-observer/1.0"

	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8080
	DefaultGrpcPort = 50051
)

// DefaultTariffColumns maps the raw tariff headers onto direction keys.
var DefaultTariffColumns = map[string]string{
	"Chinese tariffs on ROW exports": "CN_to_ROW",
	"Chinese tariffs on US exports":  "CN_to_US",
	"US tariffs on Chinese exports":  "US_to_CN",
	"US tariffs on ROW exports":      "US_to_ROW",
}

// DefaultIndicatorCountries are the economies the macro indicator pages chart.
var DefaultIndicatorCountries = []string{
	"United States", "China", "Malaysia", "Germany", "Korea, Rep.", "Viet Nam", "Canada",
}
