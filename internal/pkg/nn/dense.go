package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

//Dense is a linear projection xW + b applied per step
type Dense struct {
	W  *Param
	B  *Param
	xs []*mat.Dense
}

//NewDense creates layer with glorot uniform kernel and zero bias
func NewDense(name string, in, out int, rnd *rand.Rand) *Dense {
	res := &Dense{W: NewParam(name+"/kernel", in, out), B: NewParam(name+"/bias", 1, out)}
	GlorotUniform(res.W.Value, rnd)
	return res
}

//Params returns trainable params
func (d *Dense) Params() []*Param {
	return []*Param{d.W, d.B}
}

//Forward projects every step
func (d *Dense) Forward(xs []*mat.Dense) []*mat.Dense {
	d.xs = xs
	res := make([]*mat.Dense, len(xs))
	for t, x := range xs {
		res[t] = &mat.Dense{}
		res[t].Mul(x, d.W.Value)
		addRow(res[t], d.B.Value)
	}
	return res
}

//Backward accumulates param gradients and returns input gradients
func (d *Dense) Backward(grads []*mat.Dense) []*mat.Dense {
	res := make([]*mat.Dense, len(grads))
	for t, g := range grads {
		addMulTo(d.W.Grad, d.xs[t], g)
		addColSums(d.B.Grad, g)
		res[t] = &mat.Dense{}
		res[t].Mul(g, d.W.Value.T())
	}
	return res
}
