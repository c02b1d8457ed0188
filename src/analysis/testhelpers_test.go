package analysis

import (
	"math"

	"tariff-observer/src/models"
)

var nan = math.NaN()

func ym(s string) models.YearMonth {
	return models.MustParseYearMonth(s)
}

// seriesOf builds a series from consecutive months starting at start; NaN
// entries are skipped.
func seriesOf(key, start string, values ...float64) models.MNormalizedSeries {
	s := models.MNormalizedSeries{EntityKey: key, Source: "test"}
	m := ym(start)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		s.Points = append(s.Points, models.MTimeSeriesPoint{EntityKey: key, Month: m.AddMonths(i), Value: models.Float(v)})
	}
	return s
}

func column(vs ...float64) []models.MNullFloat {
	out := make([]models.MNullFloat, len(vs))
	for i, v := range vs {
		out[i] = models.Float(v)
	}
	return out
}

func panelOf(name string, start string, keys []string, cols ...[]models.MNullFloat) *models.MMonthlyPanel {
	n := 0
	if len(cols) > 0 {
		n = len(cols[0])
	}
	return models.NewMonthlyPanel(name, models.MonthRange(ym(start), ym(start).AddMonths(n-1)), keys, cols)
}
