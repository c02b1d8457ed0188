package analysis

import (
	"tariff-observer/src/analysis/core"
	"tariff-observer/src/models"
)

// -----------------------------------------------------------------------------

// Correlate builds the pairwise-complete Pearson matrix over every column.
// The diagonal is 1.0. Off-diagonal cells are undefined when a pair has
// fewer than two joint observations or either side is constant on them.
func Correlate(panel *models.MMonthlyPanel) (models.MCorrelationMatrix, error) {
	if err := ValidatePanel(panel); err != nil {
		return models.MCorrelationMatrix{}, err
	}

	keys := panel.Keys()
	n := len(keys)
	columns := make([][]models.MNullFloat, n)
	for i := range keys {
		columns[i] = panel.ColumnAt(i)
	}

	m := models.MCorrelationMatrix{
		Panel:        panel.Name(),
		Keys:         keys,
		Cells:        make([][]models.MNullFloat, n),
		Observations: make([][]int, n),
	}
	for i := range keys {
		m.Cells[i] = make([]models.MNullFloat, n)
		m.Observations[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		m.Cells[i][i] = models.Float(1)
		m.Observations[i][i] = countValid(columns[i])
		for j := i + 1; j < n; j++ {
			r, pairs := core.CalculateCorrelation(columns[i], columns[j])
			m.Cells[i][j], m.Cells[j][i] = r, r
			m.Observations[i][j], m.Observations[j][i] = pairs, pairs
		}
	}
	return m, nil
}

func countValid(col []models.MNullFloat) int {
	n := 0
	for _, v := range col {
		if v.Valid {
			n++
		}
	}
	return n
}
