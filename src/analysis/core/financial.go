package core

import "tariff-observer/src/models"

// -----------------------------------------------------------------------------

// CalculateChangePercent returns (current - previous) / previous * 100.
// A zero base is undefined rather than infinite or zero.
func CalculateChangePercent(current, previous float64) models.MNullFloat {
	if previous == 0 {
		return models.Undefined()
	}
	return models.Float((current - previous) / previous * 100)
}

// -----------------------------------------------------------------------------

// CalculateChange returns the absolute and percent change from a to b.
// Both are undefined when either side is missing.
func CalculateChange(a, b models.MNullFloat) (models.MNullFloat, models.MNullFloat) {
	if !a.Valid || !b.Valid {
		return models.Undefined(), models.Undefined()
	}
	return models.Float(b.Float64 - a.Float64), CalculateChangePercent(b.Float64, a.Float64)
}

// -----------------------------------------------------------------------------

// Percentage returns part/total*100 rounded to one decimal, undefined for an
// empty total.
func Percentage(part, total int) models.MNullFloat {
	if total == 0 {
		return models.Undefined()
	}
	return models.Float(RoundHalfEven(float64(part)/float64(total)*100, 1))
}
