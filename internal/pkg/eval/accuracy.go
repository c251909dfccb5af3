package eval

import (
	"github.com/airenas/nercrf/internal/pkg/crf"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//Decode returns the Viterbi path for the first lengths[i] emissions of every example
func Decode(emissions [][][]float64, lengths []int, trans mat.Matrix) ([][]int, error) {
	if len(emissions) != len(lengths) {
		return nil, errors.Errorf("Lengths count %d != batch size %d", len(lengths), len(emissions))
	}
	res := make([][]int, len(emissions))
	for i, e := range emissions {
		if lengths[i] < 0 || lengths[i] > len(e) {
			return nil, errors.Errorf("Wrong length %d for row %d", lengths[i], i)
		}
		res[i], _ = crf.Viterbi(e[:lengths[i]], trans)
	}
	return res, nil
}

//Accuracy returns the unweighted mean of per example accuracies of the decoded paths.
//An empty example scores 0
func Accuracy(emissions [][][]float64, lengths []int, labels [][]int, trans mat.Matrix) (float64, error) {
	if len(labels) != len(emissions) {
		return 0, errors.Errorf("Labels count %d != batch size %d", len(labels), len(emissions))
	}
	paths, err := Decode(emissions, lengths, trans)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, nil
	}
	sum := 0.0
	for i, p := range paths {
		if len(labels[i]) < len(p) {
			return 0, errors.Errorf("Labels row %d shorter than length %d", i, len(p))
		}
		sum += Match(p, labels[i][:len(p)])
	}
	return sum / float64(len(paths)), nil
}

//Match returns the fraction of equal positions, 0 for empty sequences
func Match(pred, gold []int) float64 {
	if len(pred) == 0 {
		return 0
	}
	c := 0
	for i, p := range pred {
		if i < len(gold) && p == gold[i] {
			c++
		}
	}
	return float64(c) / float64(len(pred))
}
