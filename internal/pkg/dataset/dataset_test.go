package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newExamples(n int) []Example {
	res := make([]Example, n)
	for i := range res {
		l := i%3 + 1
		res[i] = Example{Tokens: make([]int, l), Labels: make([]int, l)}
		for j := 0; j < l; j++ {
			res[i].Tokens[j] = i + 1
			res[i].Labels[j] = j
		}
	}
	return res
}

func TestNewBatch_Pads(t *testing.T) {
	b := NewBatch([]Example{{Tokens: []int{1, 2, 3}, Labels: []int{1, 1, 2}}, {Tokens: []int{4}, Labels: []int{2}}})
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 0, 0}}, b.Text)
	assert.Equal(t, [][]int{{1, 1, 2}, {2, 0, 0}}, b.Labels)
	assert.Equal(t, []int{3, 1}, b.Lengths)
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, 3, b.MaxLen())
}

func TestNewBatch_Empty(t *testing.T) {
	b := NewBatch(nil)
	assert.Equal(t, 0, b.Size())
	assert.Equal(t, 0, b.MaxLen())
}

func TestPadSequence_DoesNotShare(t *testing.T) {
	in := []int{1, 2}
	out := PadSequence(in, 3)
	out[0] = 5
	assert.Equal(t, []int{1, 2}, in)
	assert.Equal(t, []int{5, 2, 0}, out)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n, train, test int
	}{
		{n: 10, train: 8, test: 2},
		{n: 11, train: 8, test: 3},
		{n: 1, train: 0, test: 1},
		{n: 0, train: 0, test: 0},
	}
	for _, tc := range tests {
		tr, te := New(newExamples(tc.n)).Split(0.2)
		assert.Equal(t, tc.train, tr.Len(), "n=%d", tc.n)
		assert.Equal(t, tc.test, te.Len(), "n=%d", tc.n)
	}
}

func TestSplit_KeepsOrder(t *testing.T) {
	tr, te := New(newExamples(5)).Split(0.2)
	assert.Equal(t, 1, tr.Examples()[0].Tokens[0])
	assert.Equal(t, 5, te.Examples()[0].Tokens[0])
}

func TestBatches_DropRemainder(t *testing.T) {
	bs := New(newExamples(7)).Batches(3, nil)
	assert.Equal(t, 2, len(bs))
	for _, b := range bs {
		assert.Equal(t, 3, b.Size())
	}
	assert.Equal(t, 1, bs[0].Text[0][0])
}

func TestBatches_WrongSize(t *testing.T) {
	assert.Nil(t, New(newExamples(7)).Batches(0, nil))
}

func TestBatches_ShuffleSameSeed(t *testing.T) {
	d := New(newExamples(20))
	b1 := d.Batches(4, rand.New(rand.NewSource(1)))
	b2 := d.Batches(4, rand.New(rand.NewSource(1)))
	assert.Equal(t, b1, b2)
}

func TestBatches_ShuffleKeepsAll(t *testing.T) {
	d := New(newExamples(12))
	seen := map[int]bool{}
	for _, b := range d.Batches(4, rand.New(rand.NewSource(7))) {
		for _, r := range b.Text {
			seen[r[0]] = true
		}
	}
	assert.Equal(t, 12, len(seen))
}
