package crf

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Viterbi returns the best scoring tag sequence and its score.
//On ties the lowest tag index wins
func Viterbi(emissions [][]float64, trans mat.Matrix) ([]int, float64) {
	n := len(emissions)
	if n == 0 {
		return []int{}, 0
	}
	l := len(emissions[0])
	score := append([]float64(nil), emissions[0]...)
	back := make([][]int, n)
	buf := make([]float64, l)
	for t := 1; t < n; t++ {
		next := make([]float64, l)
		back[t] = make([]int, l)
		for j := 0; j < l; j++ {
			for i := 0; i < l; i++ {
				buf[i] = score[i] + trans.At(i, j)
			}
			best := floats.MaxIdx(buf)
			back[t][j] = best
			next[j] = buf[best] + emissions[t][j]
		}
		score = next
	}
	res := make([]int, n)
	res[n-1] = floats.MaxIdx(score)
	best := score[res[n-1]]
	for t := n - 1; t > 0; t-- {
		res[t-1] = back[t][res[t]]
	}
	return res, best
}
