package dataset

import (
	"math"
	"math/rand"
)

//Dataset keeps examples and produces batches
type Dataset struct {
	examples []Example
}

//New creates dataset
func New(examples []Example) *Dataset {
	return &Dataset{examples: examples}
}

//Len returns the number of examples
func (d *Dataset) Len() int {
	return len(d.examples)
}

//Examples returns examples
func (d *Dataset) Examples() []Example {
	return d.examples
}

//Split leaves ceil(ratio*n) last examples for the test part
func (d *Dataset) Split(testRatio float64) (train *Dataset, test *Dataset) {
	n := len(d.examples)
	testLen := int(math.Ceil(float64(n) * testRatio))
	if testLen > n {
		testLen = n
	}
	if testLen < 0 {
		testLen = 0
	}
	trainLen := n - testLen
	return New(d.examples[:trainLen]), New(d.examples[trainLen:])
}

//Batches shuffles examples when rnd is not nil and groups them by batchSize.
//The last incomplete batch is dropped
func (d *Dataset) Batches(batchSize int, rnd *rand.Rand) []*Batch {
	if batchSize <= 0 {
		return nil
	}
	order := make([]int, len(d.examples))
	for i := range order {
		order[i] = i
	}
	if rnd != nil {
		rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	res := make([]*Batch, 0, len(order)/batchSize)
	for from := 0; from+batchSize <= len(order); from += batchSize {
		exs := make([]Example, batchSize)
		for i := range exs {
			exs[i] = d.examples[order[from+i]]
		}
		res = append(res, NewBatch(exs))
	}
	return res
}
