package tfidf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseVector_Dot(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := SparseVector{Indices: []int{2, 3, 5}, Values: []float64{4, 1, 2}}
	assert.Equal(t, 14.0, a.Dot(b))
	assert.Equal(t, 14.0, b.Dot(a))
	assert.Equal(t, 0.0, a.Dot(SparseVector{}))
}

func TestCosine(t *testing.T) {
	a := SparseVector{Indices: []int{0, 1}, Values: []float64{3, 4}}
	b := SparseVector{Indices: []int{0, 1}, Values: []float64{6, 8}}
	c := SparseVector{Indices: []int{2}, Values: []float64{1}}

	assert.InDelta(t, 1.0, Cosine(a, b), 1e-12)
	assert.Equal(t, 0.0, Cosine(a, c))
	assert.Equal(t, 0.0, Cosine(a, SparseVector{}))
	assert.Equal(t, 0.0, Cosine(SparseVector{}, SparseVector{}))
}

func TestNormalize(t *testing.T) {
	v := SparseVector{Indices: []int{1, 4}, Values: []float64{3, 4}}
	v.normalize()
	assert.InDelta(t, 0.6, v.Values[0], 1e-12)
	assert.InDelta(t, 0.8, v.Values[1], 1e-12)

	zero := SparseVector{}
	zero.normalize()
	assert.Equal(t, 0, zero.NNZ())
}
