package crf

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func randProblem(seed int64, n, l int) ([][]float64, *mat.Dense) {
	rnd := rand.New(rand.NewSource(seed))
	em := make([][]float64, n)
	for t := range em {
		em[t] = make([]float64, l)
		for j := range em[t] {
			em[t][j] = rnd.NormFloat64()
		}
	}
	tr := mat.NewDense(l, l, nil)
	tr.Apply(func(_, _ int, _ float64) float64 { return rnd.Float64() }, tr)
	return em, tr
}

// allPaths enumerates every tag sequence of length n
func allPaths(n, l int) [][]int {
	res := [][]int{{}}
	for t := 0; t < n; t++ {
		var next [][]int
		for _, p := range res {
			for j := 0; j < l; j++ {
				next = append(next, append(append([]int(nil), p...), j))
			}
		}
		res = next
	}
	return res
}

func TestLogPartition_BruteForce(t *testing.T) {
	for n := 1; n <= 4; n++ {
		em, tr := randProblem(int64(n), n, 3)
		var scores []float64
		for _, p := range allPaths(n, 3) {
			scores = append(scores, Score(em, p, tr))
		}
		assert.InDelta(t, floats.LogSumExp(scores), LogPartition(em, tr), 1e-9)
	}
}

func TestLogLikelihood_BruteForce(t *testing.T) {
	em, tr := randProblem(7, 3, 3)
	sum := 0.0
	for _, p := range allPaths(3, 3) {
		r, err := LogLikelihood(em, p, tr)
		assert.Nil(t, err)
		assert.LessOrEqual(t, r.LogLikelihood, 0.0)
		sum += math.Exp(r.LogLikelihood)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestLogLikelihood_Empty(t *testing.T) {
	r, err := LogLikelihood(nil, nil, mat.NewDense(3, 3, nil))
	assert.Nil(t, err)
	assert.Equal(t, 0.0, r.LogLikelihood)
	assert.Nil(t, r.DTransitions)
	assert.Equal(t, 0.0, LogPartition(nil, mat.NewDense(3, 3, nil)))
}

func TestLogLikelihood_SingleStep(t *testing.T) {
	em := [][]float64{{1, 2}}
	r, err := LogLikelihood(em, []int{1}, mat.NewDense(2, 2, []float64{5, 5, 5, 5}))
	assert.Nil(t, err)
	assert.InDelta(t, 2-math.Log(math.Exp(1)+math.Exp(2)), r.LogLikelihood, 1e-12)
	assert.Equal(t, 0.0, mat.Sum(r.DTransitions))
}

func TestLogLikelihood_Gradients(t *testing.T) {
	em, tr := randProblem(3, 4, 3)
	tags := []int{0, 2, 2, 1}
	r, err := LogLikelihood(em, tags, tr)
	assert.Nil(t, err)
	f := func() float64 {
		v, _ := LogLikelihood(em, tags, tr)
		return v.LogLikelihood
	}
	const eps = 1e-6
	for ti := range em {
		for j := range em[ti] {
			v := em[ti][j]
			em[ti][j] = v + eps
			up := f()
			em[ti][j] = v - eps
			down := f()
			em[ti][j] = v
			assert.InDelta(t, (up-down)/(2*eps), r.DEmissions[ti][j], 1e-6)
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := tr.At(i, j)
			tr.Set(i, j, v+eps)
			up := f()
			tr.Set(i, j, v-eps)
			down := f()
			tr.Set(i, j, v)
			assert.InDelta(t, (up-down)/(2*eps), r.DTransitions.At(i, j), 1e-6)
		}
	}
}

func TestLogLikelihood_Fails(t *testing.T) {
	tr := mat.NewDense(2, 2, nil)
	_, err := LogLikelihood([][]float64{{1, 2}}, []int{0, 1}, tr)
	assert.NotNil(t, err)
	_, err = LogLikelihood([][]float64{{1, 2}}, []int{2}, tr)
	assert.NotNil(t, err)
	_, err = LogLikelihood([][]float64{{1, 2, 3}}, []int{0}, tr)
	assert.NotNil(t, err)
	_, err = LogLikelihood([][]float64{{1, 2}}, []int{0}, mat.NewDense(2, 3, nil))
	assert.NotNil(t, err)
}

func TestViterbi_BruteForce(t *testing.T) {
	for n := 1; n <= 4; n++ {
		em, tr := randProblem(int64(10+n), n, 3)
		best, bestScore := []int(nil), math.Inf(-1)
		for _, p := range allPaths(n, 3) {
			if s := Score(em, p, tr); s > bestScore {
				best, bestScore = p, s
			}
		}
		path, score := Viterbi(em, tr)
		assert.Equal(t, n, len(path))
		assert.Equal(t, best, path)
		assert.InDelta(t, bestScore, score, 1e-12)
	}
}

func TestViterbi_Empty(t *testing.T) {
	path, score := Viterbi(nil, mat.NewDense(2, 2, nil))
	assert.Equal(t, []int{}, path)
	assert.Equal(t, 0.0, score)
}

func TestViterbi_TiesFirstWins(t *testing.T) {
	path, score := Viterbi([][]float64{{1, 1}, {0, 0}}, mat.NewDense(2, 2, nil))
	assert.Equal(t, []int{0, 0}, path)
	assert.Equal(t, 1.0, score)
}

func TestViterbi_Transitions(t *testing.T) {
	tr := mat.NewDense(2, 2, []float64{0, 10, 0, 0})
	path, _ := Viterbi([][]float64{{1, 0}, {1, 0}}, tr)
	assert.Equal(t, []int{0, 1}, path)
}
