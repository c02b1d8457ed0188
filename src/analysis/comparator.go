package analysis

import (
	"sort"

	"tariff-observer/src/analysis/core"
	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------

// Compare computes, for every column, the change between monthA and monthB.
// An entity missing on either side, or a month absent from the panel, gives
// an undefined entry. A zero base leaves only the percent change undefined.
func Compare(panel *models.MMonthlyPanel, monthA, monthB models.YearMonth) (models.MComparisonResult, error) {
	if err := ValidatePanel(panel); err != nil {
		return models.MComparisonResult{}, err
	}

	ra, rb := panel.RowIndex(monthA), panel.RowIndex(monthB)
	result := models.MComparisonResult{
		Panel:   panel.Name(),
		MonthA:  monthA,
		MonthB:  monthB,
		Entries: make([]models.MComparisonEntry, 0, panel.Width()),
	}

	for i, key := range panel.Keys() {
		col := panel.ColumnAt(i)
		a, b := cellAt(col, ra), cellAt(col, rb)

		entry := models.MComparisonEntry{Entity: key}
		if a.Valid && b.Valid {
			entry.Defined = true
			entry.ValueA, entry.ValueB = a, b
			entry.AbsoluteChange, entry.PercentChange = core.CalculateChange(a, b)
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

func cellAt(col []models.MNullFloat, row int) models.MNullFloat {
	if row < 0 || row >= len(col) {
		return models.Undefined()
	}
	return col[row]
}

// -----------------------------------------------------------------------------

// TopMovers returns up to n entries with the highest and up to n with the
// lowest value of metric. Undefined values are skipped and ties keep column
// order.
func TopMovers(result models.MComparisonResult, metric models.ChangeMetric, n int) models.MTopMovers {
	movers := models.MTopMovers{
		Metric:    metric,
		Increases: []models.MComparisonEntry{},
		Decreases: []models.MComparisonEntry{},
	}
	if n <= 0 {
		return movers
	}

	defined := make([]models.MComparisonEntry, 0, len(result.Entries))
	for _, e := range result.Entries {
		if e.Metric(metric).Valid {
			defined = append(defined, e)
		}
	}

	desc := append([]models.MComparisonEntry(nil), defined...)
	sort.SliceStable(desc, func(i, j int) bool {
		return desc[i].Metric(metric).Float64 > desc[j].Metric(metric).Float64
	})
	asc := append([]models.MComparisonEntry(nil), defined...)
	sort.SliceStable(asc, func(i, j int) bool {
		return asc[i].Metric(metric).Float64 < asc[j].Metric(metric).Float64
	})

	movers.Increases = append(movers.Increases, desc[:min(n, len(desc))]...)
	movers.Decreases = append(movers.Decreases, asc[:min(n, len(asc))]...)
	return movers
}

// -----------------------------------------------------------------------------

// SummarizeChanges reports the mean and median absolute change over the
// defined entries.
func SummarizeChanges(result models.MComparisonResult) models.MChangeSummary {
	changes := make([]float64, 0, len(result.Entries))
	for _, e := range result.Entries {
		if e.AbsoluteChange.Valid {
			changes = append(changes, e.AbsoluteChange.Float64)
		}
	}
	mean, _ := core.CalculateMeanStd(changes)
	return models.MChangeSummary{
		Count:        len(changes),
		MeanChange:   mean,
		MedianChange: core.Median(changes),
	}
}

// -----------------------------------------------------------------------------

// LatestValues returns the last month with at least one value and every
// column's cell in that month.
func LatestValues(panel *models.MMonthlyPanel) models.MLatestSnapshot {
	months := panel.Months()
	keys := panel.Keys()
	columns := make([][]models.MNullFloat, len(keys))
	for i := range keys {
		columns[i] = panel.ColumnAt(i)
	}

	for r := len(months) - 1; r >= 0; r-- {
		if !rowHasValue(columns, r) {
			continue
		}
		snap := models.MLatestSnapshot{Month: months[r], Values: make([]models.MEntityValue, len(keys))}
		for i, key := range keys {
			snap.Values[i] = models.MEntityValue{Entity: key, Value: columns[i][r]}
		}
		return snap
	}
	return models.MLatestSnapshot{Values: []models.MEntityValue{}}
}

func rowHasValue(columns [][]models.MNullFloat, r int) bool {
	for _, col := range columns {
		if r < len(col) && col[r].Valid {
			return true
		}
	}
	return false
}
