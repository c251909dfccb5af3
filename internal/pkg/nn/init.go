package nn

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

//Uniform fills m with values from [min, max)
func Uniform(m *mat.Dense, rnd *rand.Rand, min, max float64) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := 0; j < c; j++ {
			row[j] = min + rnd.Float64()*(max-min)
		}
	}
}

//GlorotUniform fills m with the Xavier uniform values, fan in is rows, fan out is cols
func GlorotUniform(m *mat.Dense, rnd *rand.Rand) {
	r, c := m.Dims()
	limit := math.Sqrt(6 / float64(r+c))
	Uniform(m, rnd, -limit, limit)
}

//Orthogonal fills m with a random matrix having orthonormal rows or columns
func Orthogonal(m *mat.Dense, rnd *rand.Rand) {
	r, c := m.Dims()
	big, small := r, c
	if r < c {
		big, small = c, r
	}
	a := mat.NewDense(big, small, nil)
	for i := 0; i < big; i++ {
		row := a.RawRowView(i)
		for j := range row {
			row[j] = rnd.NormFloat64()
		}
	}
	var qr mat.QR
	qr.Factorize(a)
	var q, rm mat.Dense
	qr.QTo(&q)
	qr.RTo(&rm)
	for i := 0; i < big; i++ {
		for j := 0; j < small; j++ {
			v := q.At(i, j)
			if rm.At(j, j) < 0 {
				v = -v
			}
			if r < c {
				m.Set(j, i, v)
			} else {
				m.Set(i, j, v)
			}
		}
	}
}
