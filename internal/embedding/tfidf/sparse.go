package tfidf

import "gonum.org/v1/gonum/floats"

// SparseVector is a document row: term indices in ascending order with their
// weights. The zero value is the all-zero vector.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// NNZ returns the number of stored (non-zero) entries.
func (v SparseVector) NNZ() int { return len(v.Indices) }

// Norm returns the Euclidean length of v.
func (v SparseVector) Norm() float64 { return floats.Norm(v.Values, 2) }

// Dot returns the inner product of v and w.
func (v SparseVector) Dot(w SparseVector) float64 {
	sum := 0.0
	i, j := 0, 0
	for i < len(v.Indices) && j < len(w.Indices) {
		switch {
		case v.Indices[i] == w.Indices[j]:
			sum += v.Values[i] * w.Values[j]
			i++
			j++
		case v.Indices[i] < w.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of v and w, or 0 when either vector
// has zero length.
func Cosine(v, w SparseVector) float64 {
	nv, nw := v.Norm(), w.Norm()
	if nv == 0 || nw == 0 {
		return 0
	}
	return v.Dot(w) / (nv * nw)
}

// normalize scales v to unit length in place. Zero vectors are left alone.
func (v SparseVector) normalize() {
	n := v.Norm()
	if n == 0 {
		return
	}
	floats.Scale(1/n, v.Values)
}
