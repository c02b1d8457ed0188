package models

// SourceKind identifies the shape of a raw input table.
type SourceKind string

const (
	KindTradeBalance    SourceKind = "trade_balance"
	KindDailyPrice      SourceKind = "daily_price"
	KindYearlyIndicator SourceKind = "yearly_indicator"
	KindTariff          SourceKind = "tariff"
	KindNews            SourceKind = "news"
)

// -----------------------------------------------------------------------------

// MRawTable is a CSV table as fetched, before any typing.
type MRawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of a header, or -1.
func (t MRawTable) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the raw cell, or "" when the row is short.
func (t MRawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// -----------------------------------------------------------------------------

// MTimeSeriesPoint is one (entity, month, value) observation.
type MTimeSeriesPoint struct {
	EntityKey string     `json:"entity_key"`
	Month     YearMonth  `json:"month"`
	Value     MNullFloat `json:"value"`
}

// MNormalizedSeries holds at most one point per month, sorted by month.
type MNormalizedSeries struct {
	EntityKey string             `json:"entity_key"`
	Source    string             `json:"source"`
	Kind      SourceKind         `json:"kind"`
	Points    []MTimeSeriesPoint `json:"points"`
}

// ObservedBounds returns the first and last month carrying a valid value.
func (s MNormalizedSeries) ObservedBounds() (YearMonth, YearMonth, bool) {
	var first, last YearMonth
	found := false
	for _, p := range s.Points {
		if !p.Value.Valid {
			continue
		}
		if !found || p.Month.Before(first) {
			first = p.Month
		}
		if !found || p.Month.After(last) {
			last = p.Month
		}
		found = true
	}
	return first, last, found
}

// MNormalizeResult is everything one raw table yields. Articles is only
// filled for news sources.
type MNormalizeResult struct {
	Series      []MNormalizedSeries `json:"series"`
	Articles    []MNewsArticle      `json:"articles,omitempty"`
	Diagnostics []MDiagnostic       `json:"diagnostics"`
}
