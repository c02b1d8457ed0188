package analysis

import (
	"testing"

	"tariff-observer/src/helpers"
	"tariff-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comparisonPanel() *models.MMonthlyPanel {
	series := []models.MNormalizedSeries{
		{EntityKey: "X", Points: []models.MTimeSeriesPoint{
			{Month: ym("2020-06"), Value: models.Float(100)},
			{Month: ym("2025-03"), Value: models.Float(150)},
		}},
		{EntityKey: "Zero", Points: []models.MTimeSeriesPoint{
			{Month: ym("2020-06"), Value: models.Float(0)},
			{Month: ym("2025-03"), Value: models.Float(20)},
		}},
		{EntityKey: "Gone", Points: []models.MTimeSeriesPoint{
			{Month: ym("2020-06"), Value: models.Float(40)},
		}},
		{EntityKey: "Down", Points: []models.MTimeSeriesPoint{
			{Month: ym("2020-06"), Value: models.Float(200)},
			{Month: ym("2025-03"), Value: models.Float(50)},
		}},
	}
	panel, err := Align(series, AlignOptions{Name: "trade", Start: ym("2020-06"), End: ym("2025-03"), Fill: FillNone})
	if err != nil {
		panic(err)
	}
	return panel
}

func TestCompareChanges(t *testing.T) {
	result, err := Compare(comparisonPanel(), ym("2020-06"), ym("2025-03"))
	require.NoError(t, err)
	require.Len(t, result.Entries, 4)

	x, _ := result.Entry("X")
	assert.True(t, x.Defined)
	assert.Equal(t, 50.0, x.AbsoluteChange.Float64)
	assert.Equal(t, 50.0, x.PercentChange.Float64)

	zero, _ := result.Entry("Zero")
	assert.True(t, zero.Defined)
	assert.Equal(t, 20.0, zero.AbsoluteChange.Float64)
	assert.False(t, zero.PercentChange.Valid, "zero base has no percent change")

	gone, _ := result.Entry("Gone")
	assert.False(t, gone.Defined)
	assert.False(t, gone.ValueA.Valid, "undefined entries carry no partial values")
	assert.False(t, gone.AbsoluteChange.Valid)

	assert.Equal(t, "trade", result.Panel)
}

func TestCompareMonthOutsidePanel(t *testing.T) {
	result, err := Compare(comparisonPanel(), ym("2019-01"), ym("2025-03"))
	require.NoError(t, err)
	for _, e := range result.Entries {
		assert.False(t, e.Defined, e.Entity)
	}
}

func TestCompareRejectsInvalidPanel(t *testing.T) {
	bad := models.NewMonthlyPanel("bad", []models.YearMonth{ym("2020-06"), ym("2020-06")}, []string{"X"}, [][]models.MNullFloat{column(1, 2)})
	_, err := Compare(bad, ym("2020-06"), ym("2025-03"))
	assert.True(t, helpers.IsAlignmentError(err))
}

func TestTopMovers(t *testing.T) {
	result := models.MComparisonResult{Entries: []models.MComparisonEntry{
		{Entity: "A", Defined: true, AbsoluteChange: models.Float(10), PercentChange: models.Float(1)},
		{Entity: "B", Defined: true, AbsoluteChange: models.Float(-5), PercentChange: models.Float(-50)},
		{Entity: "C", Defined: true, AbsoluteChange: models.Float(10), PercentChange: models.Undefined()},
		{Entity: "D"},
		{Entity: "E", Defined: true, AbsoluteChange: models.Float(-5), PercentChange: models.Float(3)},
	}}

	movers := TopMovers(result, models.MetricAbsolute, 2)
	assert.Equal(t, []string{"A", "C"}, entities(movers.Increases), "ties keep insertion order")
	assert.Equal(t, []string{"B", "E"}, entities(movers.Decreases))

	movers = TopMovers(result, models.MetricPercent, 3)
	assert.Equal(t, []string{"E", "A", "B"}, entities(movers.Increases), "undefined percent is skipped")
	assert.Equal(t, []string{"B", "A", "E"}, entities(movers.Decreases))

	movers = TopMovers(result, models.MetricAbsolute, 0)
	assert.Empty(t, movers.Increases)
	assert.Empty(t, movers.Decreases)
}

func entities(es []models.MComparisonEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Entity
	}
	return out
}

func TestSummarizeChanges(t *testing.T) {
	result, err := Compare(comparisonPanel(), ym("2020-06"), ym("2025-03"))
	require.NoError(t, err)

	summary := SummarizeChanges(result)
	assert.Equal(t, 3, summary.Count)
	// changes: 50, 20, -150
	assert.InDelta(t, -80.0/3, summary.MeanChange.Float64, 1e-9)
	assert.Equal(t, 20.0, summary.MedianChange.Float64)

	empty := SummarizeChanges(models.MComparisonResult{})
	assert.Equal(t, 0, empty.Count)
	assert.False(t, empty.MeanChange.Valid)
}

func TestLatestValues(t *testing.T) {
	panel := models.NewMonthlyPanel("p",
		models.MonthRange(ym("2024-01"), ym("2024-03")),
		[]string{"A", "B"},
		[][]models.MNullFloat{
			{models.Float(1), models.Float(2), models.Undefined()},
			{models.Float(5), models.Undefined(), models.Undefined()},
		})

	snap := LatestValues(panel)
	assert.Equal(t, ym("2024-02"), snap.Month)
	require.Len(t, snap.Values, 2)
	assert.Equal(t, 2.0, snap.Values[0].Value.Float64)
	assert.False(t, snap.Values[1].Value.Valid)

	empty := LatestValues(models.NewMonthlyPanel("e", nil, nil, nil))
	assert.True(t, empty.Month.IsZero())
	assert.Empty(t, empty.Values)
}
