package crf

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Result keeps the log-likelihood of a tag sequence and its gradients
type Result struct {
	LogLikelihood float64
	// DEmissions is n x labels
	DEmissions [][]float64
	// DTransitions is nil for an empty sequence
	DTransitions *mat.Dense
}

//Score returns the unnormalized score of tags: emissions of the path plus transitions between its tags
func Score(emissions [][]float64, tags []int, trans mat.Matrix) float64 {
	res := 0.0
	for t, tag := range tags {
		res += emissions[t][tag]
		if t > 0 {
			res += trans.At(tags[t-1], tag)
		}
	}
	return res
}

//LogPartition returns the log of the summed exp scores of all tag sequences
func LogPartition(emissions [][]float64, trans mat.Matrix) float64 {
	if len(emissions) == 0 {
		return 0
	}
	alpha := forward(emissions, trans)
	return floats.LogSumExp(alpha[len(alpha)-1])
}

//LogLikelihood computes log p(tags | emissions) and its gradients.
//The likelihood of an empty sequence is 0
func LogLikelihood(emissions [][]float64, tags []int, trans mat.Matrix) (*Result, error) {
	if err := validate(emissions, tags, trans); err != nil {
		return nil, err
	}
	n := len(emissions)
	if n == 0 {
		return &Result{}, nil
	}
	l, _ := trans.Dims()
	alpha := forward(emissions, trans)
	beta := backward(emissions, trans)
	logZ := floats.LogSumExp(alpha[n-1])

	res := &Result{LogLikelihood: Score(emissions, tags, trans) - logZ,
		DEmissions: make([][]float64, n), DTransitions: mat.NewDense(l, l, nil)}
	for t := 0; t < n; t++ {
		res.DEmissions[t] = make([]float64, l)
		for j := 0; j < l; j++ {
			res.DEmissions[t][j] = -math.Exp(alpha[t][j] + beta[t][j] - logZ)
		}
		res.DEmissions[t][tags[t]]++
	}
	for t := 1; t < n; t++ {
		for i := 0; i < l; i++ {
			for j := 0; j < l; j++ {
				p := math.Exp(alpha[t-1][i] + trans.At(i, j) + emissions[t][j] + beta[t][j] - logZ)
				res.DTransitions.Set(i, j, res.DTransitions.At(i, j)-p)
			}
		}
		res.DTransitions.Set(tags[t-1], tags[t], res.DTransitions.At(tags[t-1], tags[t])+1)
	}
	return res, nil
}

func validate(emissions [][]float64, tags []int, trans mat.Matrix) error {
	l, c := trans.Dims()
	if l != c {
		return errors.Errorf("Transitions not square: %dx%d", l, c)
	}
	if len(emissions) != len(tags) {
		return errors.Errorf("Emissions len %d != tags len %d", len(emissions), len(tags))
	}
	for t, e := range emissions {
		if len(e) != l {
			return errors.Errorf("Emissions width %d at %d, expected %d", len(e), t, l)
		}
		if tags[t] < 0 || tags[t] >= l {
			return errors.Errorf("Tag %d out of range [0, %d)", tags[t], l)
		}
	}
	return nil
}

func forward(emissions [][]float64, trans mat.Matrix) [][]float64 {
	n, l := len(emissions), len(emissions[0])
	res := make([][]float64, n)
	res[0] = append([]float64(nil), emissions[0]...)
	buf := make([]float64, l)
	for t := 1; t < n; t++ {
		res[t] = make([]float64, l)
		for j := 0; j < l; j++ {
			for i := 0; i < l; i++ {
				buf[i] = res[t-1][i] + trans.At(i, j)
			}
			res[t][j] = emissions[t][j] + floats.LogSumExp(buf)
		}
	}
	return res
}

func backward(emissions [][]float64, trans mat.Matrix) [][]float64 {
	n, l := len(emissions), len(emissions[0])
	res := make([][]float64, n)
	res[n-1] = make([]float64, l)
	buf := make([]float64, l)
	for t := n - 2; t >= 0; t-- {
		res[t] = make([]float64, l)
		for i := 0; i < l; i++ {
			for j := 0; j < l; j++ {
				buf[j] = trans.At(i, j) + emissions[t+1][j] + res[t+1][j]
			}
			res[t][i] = floats.LogSumExp(buf)
		}
	}
	return res
}
