package models

// MProcessingMetrics represents the performance metrics for one dashboard build.
type MProcessingMetrics struct {
	BuildTimeSeconds float64 `json:"build_time_seconds"`
	SourcesLoaded    int     `json:"sources_loaded"`
	SourcesFailed    int     `json:"sources_failed"`
	CacheHits        int     `json:"cache_hits"`
	PanelsBuilt      int     `json:"panels_built"`
}
