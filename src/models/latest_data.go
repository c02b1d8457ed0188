package models

// -----------------------------------------------------------------------------
// Server push payload
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type              string             `json:"type"` // "INITIAL" or "UPDATE"
	Panels            []MPanelSummary    `json:"panels"`
	Diagnostics       []MDiagnostic      `json:"diagnostics"`
	Timestamp         int64              `json:"timestamp"`
	ProcessingMetrics MProcessingMetrics `json:"processing_metrics"`
}

// MPanelSummary is the lightweight per-panel view pushed to websocket clients.
type MPanelSummary struct {
	Name       string           `json:"name"`
	Title      string           `json:"title,omitempty"`
	Months     int              `json:"months"`
	Series     int              `json:"series"`
	Latest     *MLatestSnapshot `json:"latest,omitempty"`
	Comparison *MChangeSummary  `json:"comparison,omitempty"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Panels  []string `json:"panels"`
}
