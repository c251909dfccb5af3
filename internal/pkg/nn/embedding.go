package nn

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Embedding maps ids to dense vectors
type Embedding struct {
	W   *Param
	ids [][]int
}

//NewEmbedding creates layer with values from [-0.05, 0.05)
func NewEmbedding(name string, size, dim int, rnd *rand.Rand) *Embedding {
	res := &Embedding{W: NewParam(name, size, dim)}
	Uniform(res.W.Value, rnd, -0.05, 0.05)
	return res
}

//Params returns trainable params
func (e *Embedding) Params() []*Param {
	return []*Param{e.W}
}

//Forward looks up the ids of a rectangular batch. Returns one batch x dim matrix per time step
func (e *Embedding) Forward(ids [][]int) ([]*mat.Dense, error) {
	b, t := len(ids), 0
	if b > 0 {
		t = len(ids[0])
	}
	size, dim := e.W.Dims()
	res := make([]*mat.Dense, t)
	for ti := 0; ti < t; ti++ {
		res[ti] = mat.NewDense(b, dim, nil)
	}
	for bi, row := range ids {
		if len(row) != t {
			return nil, errors.Errorf("Ragged batch: row %d len %d, expected %d", bi, len(row), t)
		}
		for ti, id := range row {
			if id < 0 || id >= size {
				return nil, errors.Errorf("Id %d out of range [0, %d)", id, size)
			}
			copy(res[ti].RawRowView(bi), e.W.Value.RawRowView(id))
		}
	}
	e.ids = ids
	return res, nil
}

//Backward scatters gradients into the used rows
func (e *Embedding) Backward(grads []*mat.Dense) {
	for bi, row := range e.ids {
		for ti, id := range row {
			floats.Add(e.W.Grad.RawRowView(id), grads[ti].RawRowView(bi))
		}
	}
}
