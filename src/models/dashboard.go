package models

import "time"

// MSourceStatus reports how one configured source fared during a build.
type MSourceStatus struct {
	Name        string     `json:"name"`
	Kind        SourceKind `json:"kind"`
	Panel       string     `json:"panel,omitempty"`
	Location    string     `json:"location"`
	Loaded      bool       `json:"loaded"`
	FromCache   bool       `json:"from_cache"`
	SeriesCount int        `json:"series_count"`
	Error       string     `json:"error,omitempty"`
}

// MPanelView groups every derived table for one panel.
type MPanelView struct {
	Name        string                      `json:"name"`
	Title       string                      `json:"title,omitempty"`
	Panel       *MMonthlyPanel              `json:"panel"`
	Latest      *MLatestSnapshot            `json:"latest,omitempty"`
	Comparison  *MComparisonResult          `json:"comparison,omitempty"`
	Movers      map[ChangeMetric]MTopMovers `json:"movers,omitempty"`
	Summary     *MChangeSummary             `json:"summary,omitempty"`
	Correlation *MCorrelationMatrix         `json:"correlation,omitempty"`
}

// MDashboard is the result of one pipeline run.
type MDashboard struct {
	GeneratedAt time.Time              `json:"generated_at"`
	PanelOrder  []string               `json:"panel_order"`
	Panels      map[string]*MPanelView `json:"panels"`
	Sentiment   *MSentimentReport      `json:"sentiment,omitempty"`
	Articles    []MNewsArticle         `json:"-"`
	Sources     []MSourceStatus        `json:"sources"`
	Diagnostics []MDiagnostic          `json:"diagnostics"`
	Metrics     MProcessingMetrics     `json:"processing_metrics"`
}
