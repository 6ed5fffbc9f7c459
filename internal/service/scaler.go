package service

import (
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each column on its mean and divides by its
// population standard deviation. Constant columns are only centered.
type StandardScaler struct {
	mean []float64
	std  []float64
}

// FitStandardScaler learns per-column statistics from rows, which must be
// non-empty and rectangular.
func FitStandardScaler(rows [][]float64) *StandardScaler {
	dims := len(rows[0])
	s := &StandardScaler{mean: make([]float64, dims), std: make([]float64, dims)}

	col := make([]float64, len(rows))
	for j := range dims {
		for i, r := range rows {
			col[i] = r[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.mean[j], s.std[j] = mean, std
	}
	return s
}

// Transform returns a scaled copy of v.
func (s *StandardScaler) Transform(v []float64) []float64 {
	out := make([]float64, len(v))
	for j, x := range v {
		out[j] = (x - s.mean[j]) / s.std[j]
	}
	return out
}

// TransformAll scales every row.
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.Transform(r)
	}
	return out
}
