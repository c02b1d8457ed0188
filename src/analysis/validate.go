package analysis

import (
	"tariff-observer/src/helpers"
	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------

// ValidatePanel checks the structural invariants every consumer relies on:
// months strictly increasing (hence unique), unique keys, and one cell per
// month in every column. A violation is an *helpers.AlignmentError.
func ValidatePanel(panel *models.MMonthlyPanel) error {
	if panel == nil {
		return helpers.NewAlignmentError("nil panel")
	}

	months := panel.Months()
	for i := 1; i < len(months); i++ {
		if !months[i-1].Before(months[i]) {
			if months[i-1] == months[i] {
				return helpers.NewAlignmentError("panel %s: duplicate month row %s", panel.Name(), months[i])
			}
			return helpers.NewAlignmentError("panel %s: months not increasing at %s -> %s", panel.Name(), months[i-1], months[i])
		}
	}

	seen := make(map[string]bool, panel.Width())
	for i, key := range panel.Keys() {
		if seen[key] {
			return helpers.NewAlignmentError("panel %s: duplicate column %q", panel.Name(), key)
		}
		seen[key] = true
		if n := len(panel.ColumnAt(i)); n != len(months) {
			return helpers.NewAlignmentError("panel %s: column %q has %d cells for %d months", panel.Name(), key, n, len(months))
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// validateContiguous checks that no month is missing from `from` onwards.
func validateContiguous(panel *models.MMonthlyPanel, from models.YearMonth) error {
	var prev models.YearMonth
	started := false
	for _, m := range panel.Months() {
		if m.Before(from) {
			continue
		}
		if started && m.Ordinal() != prev.Ordinal()+1 {
			return helpers.NewAlignmentError("panel %s: calendar gap between %s and %s", panel.Name(), prev, m)
		}
		prev, started = m, true
	}
	return nil
}
