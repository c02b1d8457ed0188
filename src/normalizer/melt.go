package normalizer

import "tariff-observer/src/models"

// Melt flattens series back into long (entity, month, value) points, in
// series order then month order.
func Melt(series []models.MNormalizedSeries) []models.MTimeSeriesPoint {
	n := 0
	for _, s := range series {
		n += len(s.Points)
	}
	out := make([]models.MTimeSeriesPoint, 0, n)
	for _, s := range series {
		for _, p := range s.Points {
			p.EntityKey = s.EntityKey
			out = append(out, p)
		}
	}
	return out
}
