package analysis

import (
	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
)

// FillPolicy selects which gap filling passes run on a column. Forward runs
// before backward.
type FillPolicy uint8

const (
	FillForward FillPolicy = 1 << iota
	FillBackward
)

const FillNone FillPolicy = 0

// FillForwardBackward also covers leading gaps before the first observation.
const FillForwardBackward = FillForward | FillBackward

// AlignOptions bounds and fills a panel. A zero Start or End is taken from the
// observed data.
type AlignOptions struct {
	Name       string
	Start      models.YearMonth
	End        models.YearMonth
	Fill       FillPolicy
	SeriesFill map[string]FillPolicy

	// Rows before StrictCutoff are dropped when any cell is missing.
	// Rows at or after it are kept as they are.
	StrictCutoff *models.YearMonth
}

// DefaultAlignOptions forward fills over the given calendar.
func DefaultAlignOptions(name string, start, end models.YearMonth) AlignOptions {
	return AlignOptions{Name: name, Start: start, End: end, Fill: FillForward}
}

// -----------------------------------------------------------------------------

// CalendarBounds returns the earliest and latest observed month over all series.
func CalendarBounds(series []models.MNormalizedSeries) (models.YearMonth, models.YearMonth, bool) {
	var first, last models.YearMonth
	found := false
	for _, s := range series {
		f, l, ok := s.ObservedBounds()
		if !ok {
			continue
		}
		if !found || f.Before(first) {
			first = f
		}
		if !found || l.After(last) {
			last = l
		}
		found = true
	}
	return first, last, found
}

// -----------------------------------------------------------------------------

// Align reindexes every series onto the monthly calendar Start..End, fills
// each column, and outer-joins them into one panel. Every series yields a
// column, including those with no observation inside the calendar.
func Align(series []models.MNormalizedSeries, opts AlignOptions) (*models.MMonthlyPanel, error) {
	seen := make(map[string]string, len(series))
	for _, s := range series {
		if prev, dup := seen[s.EntityKey]; dup {
			return nil, helpers.NewAlignmentError("entity key %q produced by both %s and %s", s.EntityKey, prev, s.Source)
		}
		seen[s.EntityKey] = s.Source
	}

	start, end := opts.Start, opts.End
	if start.IsZero() || end.IsZero() {
		first, last, ok := CalendarBounds(series)
		if !ok {
			return nil, helpers.NewAlignmentError("panel %s: no observations to bound the calendar", opts.Name)
		}
		if start.IsZero() {
			start = first
		}
		if end.IsZero() {
			end = last
		}
	}
	if start.After(end) {
		return nil, helpers.NewAlignmentError("panel %s: calendar start %s is after end %s", opts.Name, start, end)
	}

	calendar := models.MonthRange(start, end)
	resampler := &TimeSeriesResampler{}

	keys := make([]string, len(series))
	columns := make([][]models.MNullFloat, len(series))
	for i, s := range series {
		keys[i] = s.EntityKey
		col := resampler.Reindex(s, calendar)

		policy := opts.Fill
		if p, ok := opts.SeriesFill[s.EntityKey]; ok {
			policy = p
		}
		if policy&FillForward != 0 {
			col = resampler.ForwardFill(col)
		}
		if policy&FillBackward != 0 {
			col = resampler.BackwardFill(col)
		}
		columns[i] = col
	}

	months, columns := applyStrictCutoff(calendar, columns, opts.StrictCutoff)

	panel := models.NewMonthlyPanel(opts.Name, months, keys, columns)
	if err := ValidatePanel(panel); err != nil {
		return nil, err
	}
	from := start
	if opts.StrictCutoff != nil && opts.StrictCutoff.After(from) {
		from = *opts.StrictCutoff
	}
	if err := validateContiguous(panel, from); err != nil {
		return nil, err
	}
	return panel, nil
}

// -----------------------------------------------------------------------------

// applyStrictCutoff drops incomplete rows before the cutoff.
func applyStrictCutoff(calendar []models.YearMonth, columns [][]models.MNullFloat, cutoff *models.YearMonth) ([]models.YearMonth, [][]models.MNullFloat) {
	if cutoff == nil {
		return calendar, columns
	}

	keep := make([]int, 0, len(calendar))
	for r, m := range calendar {
		if m.Before(*cutoff) && !rowComplete(columns, r) {
			continue
		}
		keep = append(keep, r)
	}
	if len(keep) == len(calendar) {
		return calendar, columns
	}

	months := make([]models.YearMonth, len(keep))
	for i, r := range keep {
		months[i] = calendar[r]
	}
	out := make([][]models.MNullFloat, len(columns))
	for c, col := range columns {
		out[c] = make([]models.MNullFloat, len(keep))
		for i, r := range keep {
			out[c][i] = col[r]
		}
	}
	return months, out
}

func rowComplete(columns [][]models.MNullFloat, r int) bool {
	for _, col := range columns {
		if !col[r].Valid {
			return false
		}
	}
	return true
}
