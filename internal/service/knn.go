package service

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Neighbor is one k-NN match: the position of the row in the indexed matrix
// and its cosine distance from the query.
type Neighbor struct {
	Row      int
	Distance float64
}

// CosineIndex is a brute-force nearest-neighbor index under cosine distance.
// Rows are stored as unit vectors. It is immutable after construction.
type CosineIndex struct {
	dims  int
	units [][]float64
}

// NewCosineIndex indexes rows. Every row must have the same length.
func NewCosineIndex(rows [][]float64) (*CosineIndex, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot index an empty matrix")
	}
	dims := len(rows[0])
	units := make([][]float64, len(rows))
	for i, r := range rows {
		if len(r) != dims {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), dims)
		}
		units[i] = unit(r)
	}
	return &CosineIndex{dims: dims, units: units}, nil
}

// Len returns the number of indexed rows.
func (ix *CosineIndex) Len() int {
	return len(ix.units)
}

// Query returns the k rows closest to q, nearest first. Equal distances keep
// row order. k larger than the index is reduced to its size.
func (ix *CosineIndex) Query(q []float64, k int) ([]Neighbor, error) {
	if len(q) != ix.dims {
		return nil, fmt.Errorf("query has %d columns, want %d", len(q), ix.dims)
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}
	k = min(k, len(ix.units))

	qUnit := unit(q)
	all := make([]Neighbor, len(ix.units))
	for i, r := range ix.units {
		all[i] = Neighbor{Row: i, Distance: unitDistance(qUnit, r)}
	}
	slices.SortStableFunc(all, func(a, b Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return all[:k], nil
}

// CosineDistance returns 1 - cos(a, b), in [0, 2]. A zero vector has no
// direction and is treated as orthogonal to everything (distance 1).
func CosineDistance(a, b []float64) float64 {
	return unitDistance(unit(a), unit(b))
}

func unitDistance(a, b []float64) float64 {
	if a == nil || b == nil {
		return 1
	}
	d := 1 - floats.Dot(a, b)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 1
	}
	return min(max(d, 0), 2)
}

// unit scales v by its largest magnitude before normalizing, so components
// near the float64 limit do not overflow the norm. It returns nil for a
// vector without a finite direction.
func unit(v []float64) []float64 {
	peak := floats.Norm(v, math.Inf(1))
	if peak == 0 || math.IsNaN(peak) || math.IsInf(peak, 0) {
		return nil
	}
	out := make([]float64, len(v))
	floats.ScaleTo(out, 1/peak, v)
	n := floats.Norm(out, 2)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	floats.Scale(1/n, out)
	return out
}
