package analysis

import (
	"tariff-observer/src/models"
)

// TimeSeriesResampler places monthly series on a shared calendar and fills gaps.
type TimeSeriesResampler struct{}

// -----------------------------------------------------------------------------

// Reindex returns one cell per calendar month. Unobserved months are missing;
// points outside the calendar are ignored.
func (r *TimeSeriesResampler) Reindex(series models.MNormalizedSeries, calendar []models.YearMonth) []models.MNullFloat {
	out := make([]models.MNullFloat, len(calendar))
	if len(calendar) == 0 {
		return out
	}

	first := calendar[0].Ordinal()
	for _, p := range series.Points {
		i := p.Month.Ordinal() - first
		if i < 0 || i >= len(calendar) {
			continue
		}
		out[i] = p.Value
	}
	return out
}

// -----------------------------------------------------------------------------

// ForwardFill copies the last known value into later gaps. Leading gaps stay
// missing. A column with no gaps is returned unchanged.
func (r *TimeSeriesResampler) ForwardFill(column []models.MNullFloat) []models.MNullFloat {
	out := make([]models.MNullFloat, len(column))
	var last models.MNullFloat
	for i, v := range column {
		if v.Valid {
			last = v
		}
		out[i] = last
		if !last.Valid {
			out[i] = v
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// BackwardFill copies the next known value into earlier gaps.
func (r *TimeSeriesResampler) BackwardFill(column []models.MNullFloat) []models.MNullFloat {
	out := make([]models.MNullFloat, len(column))
	var next models.MNullFloat
	for i := len(column) - 1; i >= 0; i-- {
		v := column[i]
		if v.Valid {
			next = v
		}
		out[i] = next
		if !next.Valid {
			out[i] = v
		}
	}
	return out
}
