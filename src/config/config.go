package config

import (
	"fmt"
	"os"
	"strings"

	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
	"tariff-observer/src/normalizer"
	"tariff-observer/src/utils"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. TARIFF_PORT or
// TARIFF_CACHE_REDIS_ADDR.
const EnvPrefix = "TARIFF"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file, then applies defaults and
// environment overrides before validating.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}
	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	// 1. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 2. Environment overrides
	if err := envconfig.Process(EnvPrefix, config.MConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to apply environment overrides", err)
	}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset field. Panels referenced by a source but
// not declared are added with default settings.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "tariff-observer"
	}
	if c.Host == "" {
		c.Host = utils.DefaultHost
	}
	if c.Port == 0 {
		c.Port = utils.DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.GrpcHost == "" {
		c.GrpcHost = c.Host
	}
	if c.GrpcPort == 0 {
		c.GrpcPort = utils.DefaultGrpcPort
	}

	if c.Cache.Type == "" {
		c.Cache.Type = utils.DefaultCacheType
	}
	if c.Cache.Type == "sqlite" && c.Cache.DBPath == "" {
		c.Cache.DBPath = utils.DefaultCacheDBPath
	}
	if c.Cache.BucketSeconds == 0 {
		c.Cache.BucketSeconds = utils.DefaultBucketSeconds
	}
	if c.Cache.RetentionBuckets == 0 {
		c.Cache.RetentionBuckets = utils.DefaultRetentionBuckets
	}

	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = utils.DefaultRequestTimeout
	}
	if c.Network.ConcurrentRequests == 0 {
		c.Network.ConcurrentRequests = utils.DefaultConcurrentRequests
	}
	if c.Network.UserAgent == "" {
		c.Network.UserAgent = utils.DefaultUserAgent
	}

	a := &c.Analysis
	if a.CalendarEnd.IsZero() {
		a.CalendarEnd = utils.DefaultCalendarEnd
	}
	if a.StrictCutoff.IsZero() {
		a.StrictCutoff = utils.DefaultStrictCutoff
	}
	if a.CompareFrom.IsZero() {
		a.CompareFrom = utils.DefaultCompareFrom
	}
	if a.CompareTo.IsZero() {
		a.CompareTo = utils.DefaultCompareTo
	}
	if a.TopN == 0 {
		a.TopN = utils.DefaultTopN
	}
	if a.IndicatorStartYear == 0 {
		a.IndicatorStartYear = utils.DefaultIndicatorStartYear
	}
	if a.IndicatorEndYear == 0 {
		a.IndicatorEndYear = utils.DefaultIndicatorEndYear
	}
	if a.SentimentTopCountries == 0 {
		a.SentimentTopCountries = utils.DefaultSentimentTopCountries
	}
	if a.SentimentGranularity == "" {
		a.SentimentGranularity = string(models.GranularityMonthly)
	}
	if a.RefreshIntervalSeconds == 0 {
		a.RefreshIntervalSeconds = utils.DefaultRefreshSeconds
	}

	declared := make(map[string]bool, len(c.Panels))
	for _, p := range c.Panels {
		declared[p.Name] = true
	}
	for _, s := range c.Sources {
		if s.Panel != "" && !declared[s.Panel] {
			c.Panels = append(c.Panels, models.MPanelConfig{Name: s.Panel, Compare: true})
			declared[s.Panel] = true
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort <= 1024 || c.GrpcPort > 65535 || c.GrpcPort == c.Port {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Validate Cache configuration
	switch c.Cache.Type {
	case "sqlite":
		if c.Cache.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Cache.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for redis")
		}
	case "none":
	default:
		return fmt.Errorf("unknown cache type '%s'", c.Cache.Type)
	}
	if c.Cache.BucketSeconds <= 0 {
		return fmt.Errorf("cache bucket seconds must be greater than 0")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate Analysis configuration
	a := c.Analysis
	if a.TopN < 0 {
		return fmt.Errorf("top_n cannot be negative")
	}
	if a.IndicatorStartYear > a.IndicatorEndYear {
		return fmt.Errorf("indicator start year %d is after end year %d", a.IndicatorStartYear, a.IndicatorEndYear)
	}
	switch models.Granularity(a.SentimentGranularity) {
	case models.GranularityMonthly, models.GranularityQuarterly, models.GranularityYearly:
	default:
		return fmt.Errorf("unknown sentiment granularity '%s'", a.SentimentGranularity)
	}
	if a.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be greater than 0")
	}

	// Validate Panels
	panels := make(map[string]bool, len(c.Panels))
	for i, p := range c.Panels {
		if p.Name == "" {
			return fmt.Errorf("panel %d must have a name", i)
		}
		if panels[p.Name] {
			return fmt.Errorf("panel '%s' declared twice", p.Name)
		}
		panels[p.Name] = true
		if !p.CalendarStart.IsZero() && !p.CalendarEnd.IsZero() && p.CalendarStart.After(p.CalendarEnd) {
			return fmt.Errorf("panel '%s': calendar start %s is after end %s", p.Name, p.CalendarStart, p.CalendarEnd)
		}
	}

	// Validate Sources
	sources := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source %d must have a name", i)
		}
		if sources[src.Name] {
			return fmt.Errorf("source '%s' declared twice", src.Name)
		}
		sources[src.Name] = true
		if src.Location == "" {
			return fmt.Errorf("source '%s' must have a location", src.Name)
		}
		switch src.Kind {
		case models.KindTradeBalance, models.KindYearlyIndicator, models.KindTariff:
		case models.KindDailyPrice:
			if src.EntityKey == "" {
				return fmt.Errorf("source '%s' must have an entity_key", src.Name)
			}
		case models.KindNews:
		default:
			return fmt.Errorf("source '%s' has unknown kind '%s'", src.Name, src.Kind)
		}
		if src.Kind != models.KindNews && src.Panel == "" {
			return fmt.Errorf("source '%s' must be assigned to a panel", src.Name)
		}
		switch strings.ToLower(src.Encoding) {
		case "", "utf-8", "utf8", "iso-8859-1", "latin1", "latin-1":
		default:
			return fmt.Errorf("source '%s' has unsupported encoding '%s'", src.Name, src.Encoding)
		}
	}

	return c.validateEntityKeys()
}

// validateEntityKeys rejects two sources of one panel that can produce the
// same entity key; alignment would refuse the panel otherwise.
func (c *Config) validateEntityKeys() error {
	spaces := make([]normalizer.KeySpace, len(c.Sources))
	for i, src := range c.Sources {
		spaces[i] = normalizer.SourceKeySpace(src, c.Analysis)
	}
	for i, a := range c.Sources {
		if a.Panel == "" {
			continue
		}
		for j := i + 1; j < len(c.Sources); j++ {
			b := c.Sources[j]
			if b.Panel != a.Panel {
				continue
			}
			if key, ok := spaces[i].Overlap(spaces[j]); ok {
				return fmt.Errorf("sources '%s' and '%s' in panel '%s' can both produce entity key %q; set key_prefix or key_suffix",
					a.Name, b.Name, a.Panel, key)
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Panel returns the panel configuration by name.
func (c *Config) Panel(name string) (models.MPanelConfig, bool) {
	for _, p := range c.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return models.MPanelConfig{}, false
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
