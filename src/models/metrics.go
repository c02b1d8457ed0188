package models

// ChangeMetric selects which comparison column a ranking uses.
type ChangeMetric string

const (
	MetricAbsolute ChangeMetric = "absolute"
	MetricPercent  ChangeMetric = "percent"
)

// MComparisonEntry is one entity's change between two reference months.
// When Defined is false every numeric field is undefined.
type MComparisonEntry struct {
	Entity         string     `json:"entity"`
	Defined        bool       `json:"defined"`
	ValueA         MNullFloat `json:"value_a"`
	ValueB         MNullFloat `json:"value_b"`
	AbsoluteChange MNullFloat `json:"absolute_change"`
	PercentChange  MNullFloat `json:"percent_change"`
}

// Metric returns the requested change column.
func (e MComparisonEntry) Metric(m ChangeMetric) MNullFloat {
	if m == MetricPercent {
		return e.PercentChange
	}
	return e.AbsoluteChange
}

type MComparisonResult struct {
	Panel   string             `json:"panel"`
	MonthA  YearMonth          `json:"month_a"`
	MonthB  YearMonth          `json:"month_b"`
	Entries []MComparisonEntry `json:"entries"`
}

func (r MComparisonResult) Entry(entity string) (MComparisonEntry, bool) {
	for _, e := range r.Entries {
		if e.Entity == entity {
			return e, true
		}
	}
	return MComparisonEntry{}, false
}

// MTopMovers lists the strongest changes in each direction for chart annotation.
type MTopMovers struct {
	Metric    ChangeMetric       `json:"metric"`
	Increases []MComparisonEntry `json:"increases"`
	Decreases []MComparisonEntry `json:"decreases"`
}

type MChangeSummary struct {
	Count        int        `json:"count"`
	MeanChange   MNullFloat `json:"mean_change"`
	MedianChange MNullFloat `json:"median_change"`
}

type MEntityValue struct {
	Entity string     `json:"entity"`
	Value  MNullFloat `json:"value"`
}

// MLatestSnapshot is the most recent month holding any value.
type MLatestSnapshot struct {
	Month  YearMonth      `json:"month"`
	Values []MEntityValue `json:"values"`
}

// -----------------------------------------------------------------------------

// MCorrelationMatrix is symmetric; Observations holds the pairwise-complete row counts.
type MCorrelationMatrix struct {
	Panel        string         `json:"panel"`
	Keys         []string       `json:"keys"`
	Cells        [][]MNullFloat `json:"cells"`
	Observations [][]int        `json:"observations"`
}

func (m MCorrelationMatrix) Get(a, b string) (MNullFloat, bool) {
	i, j := -1, -1
	for k, key := range m.Keys {
		if key == a {
			i = k
		}
		if key == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return MNullFloat{}, false
	}
	return m.Cells[i][j], true
}
