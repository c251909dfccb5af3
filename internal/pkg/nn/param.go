package nn

import (
	"gonum.org/v1/gonum/mat"
)

//Param is a trainable matrix with its accumulated gradient
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

//NewParam creates zero initialized param
func NewParam(name string, rows, cols int) *Param {
	return &Param{Name: name, Value: mat.NewDense(rows, cols, nil), Grad: mat.NewDense(rows, cols, nil)}
}

//ZeroGrad clears the gradient
func (p *Param) ZeroGrad() {
	p.Grad.Zero()
}

//Dims returns the shape of the param
func (p *Param) Dims() (int, int) {
	return p.Value.Dims()
}

//Layer is a part of the network having trainable params
type Layer interface {
	Params() []*Param
}

//CollectParams returns params of all layers in order
func CollectParams(layers ...Layer) []*Param {
	var res []*Param
	for _, l := range layers {
		res = append(res, l.Params()...)
	}
	return res
}
