package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func sigmoid(_, _ int, v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

func tanh(_, _ int, v float64) float64 {
	return math.Tanh(v)
}

//addRow adds row vector b (1xc) to every row of m
func addRow(m *mat.Dense, b *mat.Dense) {
	r, _ := m.Dims()
	bv := b.RawRowView(0)
	for i := 0; i < r; i++ {
		floats.Add(m.RawRowView(i), bv)
	}
}

//addColSums adds sums of m columns to the row vector dst (1xc)
func addColSums(dst *mat.Dense, m *mat.Dense) {
	r, _ := m.Dims()
	dv := dst.RawRowView(0)
	for i := 0; i < r; i++ {
		floats.Add(dv, m.RawRowView(i))
	}
}

//addMulTo accumulates aᵀb into dst
func addMulTo(dst *mat.Dense, a, b mat.Matrix) {
	var tmp mat.Dense
	tmp.Mul(a.T(), b)
	dst.Add(dst, &tmp)
}

func sliceCols(m *mat.Dense, from, to int) *mat.Dense {
	r, _ := m.Dims()
	return mat.DenseCopyOf(m.Slice(0, r, from, to))
}
