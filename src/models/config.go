package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level" split_words:"true"`
	GrpcHost string          `yaml:"grpc_host" split_words:"true"`
	GrpcPort int             `yaml:"grpc_port" split_words:"true"`
	Cache    MCacheConfig    `yaml:"cache"`
	Network  MNetworkConfig  `yaml:"network"`
	Analysis MAnalysisConfig `yaml:"analysis"`
	Panels   []MPanelConfig  `yaml:"panels" ignored:"true"`
	Sources  []MSourceConfig `yaml:"sources" ignored:"true"`
}

type MCacheConfig struct {
	Type               string `yaml:"type"` // sqlite, postgres, redis, none
	DBPath             string `yaml:"db_path" split_words:"true"`
	DBConnectionString string `yaml:"db_connection_string" split_words:"true"`
	RedisAddr          string `yaml:"redis_addr" split_words:"true"`
	RedisPassword      string `yaml:"redis_password" split_words:"true"`
	RedisDB            int    `yaml:"redis_db" split_words:"true"`
	BucketSeconds      int    `yaml:"bucket_seconds" split_words:"true"`
	RetentionBuckets   int    `yaml:"retention_buckets" split_words:"true"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout" split_words:"true"`
	MaxRetries         int    `yaml:"retries" split_words:"true"`
	ConcurrentRequests int    `yaml:"concurrent_requests" split_words:"true"`
	UserAgent          string `yaml:"user_agent" split_words:"true"`
	Proxy              string `yaml:"proxy"`
}

type MAnalysisConfig struct {
	CalendarEnd            YearMonth `yaml:"calendar_end" split_words:"true"`
	StrictCutoff           YearMonth `yaml:"strict_cutoff" split_words:"true"`
	CompareFrom            YearMonth `yaml:"compare_from" split_words:"true"`
	CompareTo              YearMonth `yaml:"compare_to" split_words:"true"`
	TopN                   int       `yaml:"top_n" split_words:"true"`
	IndicatorStartYear     int       `yaml:"indicator_start_year" split_words:"true"`
	IndicatorEndYear       int       `yaml:"indicator_end_year" split_words:"true"`
	SentimentTopCountries  int       `yaml:"sentiment_top_countries" split_words:"true"`
	SentimentGranularity   string    `yaml:"sentiment_granularity" split_words:"true"`
	RefreshIntervalSeconds int       `yaml:"refresh_interval_seconds" split_words:"true"`
}

// MPanelConfig describes how the series of one panel are aligned and analysed.
// Zero months fall back to the analysis defaults.
type MPanelConfig struct {
	Name          string    `yaml:"name"`
	Title         string    `yaml:"title"`
	Compare       bool      `yaml:"compare"`
	Correlate     bool      `yaml:"correlate"`
	CalendarStart YearMonth `yaml:"calendar_start"`
	CalendarEnd   YearMonth `yaml:"calendar_end"`
	StrictCutoff  YearMonth `yaml:"strict_cutoff"`
	ForwardFill   *bool     `yaml:"forward_fill"`
	BackwardFill  bool      `yaml:"backward_fill"`
	CompareFrom   YearMonth `yaml:"compare_from"`
	CompareTo     YearMonth `yaml:"compare_to"`
}

// FillForward defaults to true when unset.
func (p MPanelConfig) FillForward() bool {
	return p.ForwardFill == nil || *p.ForwardFill
}

type MSourceConfig struct {
	Name     string     `yaml:"name"`
	Kind     SourceKind `yaml:"kind"`
	Location string     `yaml:"location"`
	Panel    string     `yaml:"panel"`
	Encoding string     `yaml:"encoding"` // "", utf-8, iso-8859-1

	// daily_price
	EntityKey string `yaml:"entity_key"`
	Calendar  string `yaml:"calendar"` // exchange MIC, e.g. xnys

	// yearly_indicator
	Indicator string   `yaml:"indicator"`
	Countries []string `yaml:"countries"`
	StartYear int      `yaml:"start_year"`
	EndYear   int      `yaml:"end_year"`

	// tariff: raw header -> entity key
	Columns map[string]string `yaml:"columns"`

	KeyPrefix    string `yaml:"key_prefix"`
	KeySuffix    string `yaml:"key_suffix"`
	BackwardFill bool   `yaml:"backward_fill"`
}
