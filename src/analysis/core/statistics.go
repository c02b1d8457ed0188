package core

import (
	"math"
	"sort"

	"tariff-observer/src/models"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// -----------------------------------------------------------------------------

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// -----------------------------------------------------------------------------

// CalculateMeanStd computes the mean and the sample standard deviation
// (n-1 denominator). The deviation is undefined below two values.
func CalculateMeanStd(data []float64) (models.MNullFloat, models.MNullFloat) {
	switch len(data) {
	case 0:
		return models.Undefined(), models.Undefined()
	case 1:
		return models.Float(data[0]), models.Undefined()
	}
	mean, std := stat.MeanStdDev(data, nil)
	return models.Float(mean), models.Float(std)
}

// -----------------------------------------------------------------------------

// MinMax returns the extremes of a non-empty slice.
func MinMax(data []float64) (models.MNullFloat, models.MNullFloat) {
	if len(data) == 0 {
		return models.Undefined(), models.Undefined()
	}
	return models.Float(floats.Min(data)), models.Float(floats.Max(data))
}

// -----------------------------------------------------------------------------

// Median averages the two middle values of an even-length slice.
func Median(data []float64) models.MNullFloat {
	n := len(data)
	if n == 0 {
		return models.Undefined()
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return models.Float(sorted[n/2])
	}
	return models.Float((sorted[n/2-1] + sorted[n/2]) / 2)
}

// -----------------------------------------------------------------------------

// CalculateCorrelation computes the Pearson coefficient over the positions
// where both inputs are valid. It also returns the number of such pairs.
// Fewer than two pairs or a constant side gives an undefined coefficient.
func CalculateCorrelation(x, y []models.MNullFloat) (models.MNullFloat, int) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if x[i].Valid && y[i].Valid {
			xs = append(xs, x[i].Float64)
			ys = append(ys, y[i].Float64)
		}
	}

	pairs := len(xs)
	if pairs < 2 || isConstant(xs) || isConstant(ys) {
		return models.Undefined(), pairs
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return models.Undefined(), pairs
	}
	return models.Float(math.Max(-1, math.Min(1, r))), pairs
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------

// RoundHalfEven rounds to the given decimal places, ties to even.
func RoundHalfEven(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}

// RoundNull applies RoundHalfEven to a defined value.
func RoundNull(v models.MNullFloat, places int32) models.MNullFloat {
	if !v.Valid {
		return v
	}
	return models.Float(RoundHalfEven(v.Float64, places))
}
