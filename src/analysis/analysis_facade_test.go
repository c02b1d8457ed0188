package analysis

import (
	"testing"

	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facadeConfig() *models.MConfig {
	noFill := false
	return &models.MConfig{
		Analysis: models.MAnalysisConfig{
			CalendarEnd:  ym("2020-06"),
			StrictCutoff: ym("2020-01"),
			CompareFrom:  ym("2020-01"),
			CompareTo:    ym("2020-03"),
			TopN:         1,
		},
		Panels: []models.MPanelConfig{
			{Name: "trade", Compare: true, ForwardFill: &noFill},
			{Name: "corr", Correlate: true},
		},
	}
}

func TestAlignOptionsForCorrelationPanel(t *testing.T) {
	f := NewAnalysisFacade(facadeConfig(), logger.NewNopLogger("test"))
	series := []models.MNormalizedSeries{seriesOf("SPX", "2019-10", 1, 2, 3)}

	opts := f.AlignOptionsFor("corr", series, map[string]bool{"SPX": true})
	assert.Equal(t, ym("2019-10"), opts.Start)
	assert.Equal(t, ym("2020-06"), opts.End, "calendar runs through calendar_end")
	require.NotNil(t, opts.StrictCutoff)
	assert.Equal(t, ym("2020-01"), *opts.StrictCutoff)
	assert.Equal(t, FillForward, opts.Fill)
	assert.Equal(t, FillForwardBackward, opts.SeriesFill["SPX"])

	late := []models.MNormalizedSeries{seriesOf("SPX", "2020-01", 1, 2, 3, 4, 5, 6, 7, 8)}
	opts = f.AlignOptionsFor("corr", late, nil)
	assert.Equal(t, ym("2020-08"), opts.End, "observations past calendar_end extend the calendar")

	opts = f.AlignOptionsFor("trade", series, nil)
	assert.Nil(t, opts.StrictCutoff)
	assert.Equal(t, FillNone, opts.Fill)
}

func TestBuildViewTradePanel(t *testing.T) {
	f := NewAnalysisFacade(facadeConfig(), nil)
	series := []models.MNormalizedSeries{
		seriesOf("World", "2020-01", 100, nan, 130),
		seriesOf("China", "2020-01", 50, 60, 40),
	}
	view, err := f.BuildView("trade", series, nil)
	require.NoError(t, err)

	require.NotNil(t, view.Comparison)
	world, _ := view.Comparison.Entry("World")
	assert.Equal(t, 30.0, world.AbsoluteChange.Float64)
	assert.Equal(t, []string{"World"}, entities(view.Movers[models.MetricAbsolute].Increases))
	assert.Equal(t, []string{"China"}, entities(view.Movers[models.MetricPercent].Decreases))
	assert.Equal(t, 2, view.Summary.Count)
	assert.Nil(t, view.Correlation)

	v, _ := view.Panel.Value(ym("2020-02"), "World")
	assert.False(t, v.Valid, "trade panel is not filled")
	assert.Equal(t, ym("2020-03"), view.Latest.Month)
}

func TestBuildViewCorrelationPanel(t *testing.T) {
	f := NewAnalysisFacade(facadeConfig(), nil)
	series := []models.MNormalizedSeries{
		seriesOf("A", "2019-12", 1, 2, 3, 4),
		seriesOf("B", "2020-01", 2, 4, 6),
	}
	view, err := f.BuildView("corr", series, nil)
	require.NoError(t, err)

	require.NotNil(t, view.Correlation)
	ab, _ := view.Correlation.Get("A", "B")
	assert.InDelta(t, 1.0, ab.Float64, 1e-9)
	assert.Equal(t, ym("2020-01"), view.Panel.Months()[0], "incomplete 2019-12 row dropped")
	assert.Nil(t, view.Comparison)
}

func TestCompareMonthsFallsBack(t *testing.T) {
	f := NewAnalysisFacade(&models.MConfig{}, nil)
	from, to := f.CompareMonths("anything")
	assert.Equal(t, ym("2020-06"), from)
	assert.Equal(t, ym("2025-03"), to)
	assert.Equal(t, 3, f.TopN())
}
