package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

//Dropout zeroes inputs with probability Rate while training and scales the rest by 1/(1-Rate)
type Dropout struct {
	Rate  float64
	rnd   *rand.Rand
	masks []*mat.Dense
}

//NewDropout creates dropout layer
func NewDropout(rate float64, rnd *rand.Rand) *Dropout {
	return &Dropout{Rate: rate, rnd: rnd}
}

//Forward applies dropout, inputs are returned as is when not training
func (d *Dropout) Forward(xs []*mat.Dense, training bool) []*mat.Dense {
	d.masks = nil
	if !training || d.Rate <= 0 {
		return xs
	}
	scale := 0.0
	if d.Rate < 1 {
		scale = 1 / (1 - d.Rate)
	}
	res := make([]*mat.Dense, len(xs))
	d.masks = make([]*mat.Dense, len(xs))
	for i, x := range xs {
		r, c := x.Dims()
		mask := mat.NewDense(r, c, nil)
		mask.Apply(func(_, _ int, _ float64) float64 {
			if d.rnd.Float64() < d.Rate {
				return 0
			}
			return scale
		}, mask)
		d.masks[i] = mask
		res[i] = mat.NewDense(r, c, nil)
		res[i].MulElem(x, mask)
	}
	return res
}

//Backward masks the gradients the same way as the last forward pass
func (d *Dropout) Backward(grads []*mat.Dense) []*mat.Dense {
	if d.masks == nil {
		return grads
	}
	res := make([]*mat.Dense, len(grads))
	for i, g := range grads {
		r, c := g.Dims()
		res[i] = mat.NewDense(r, c, nil)
		res[i].MulElem(g, d.masks[i])
	}
	return res
}
