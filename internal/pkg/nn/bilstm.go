package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

//BiLSTM concatenates forward and reverse LSTM outputs per step
type BiLSTM struct {
	Fw *LSTM
	Bw *LSTM
}

//NewBiLSTM creates layer, output size is 2*hidden
func NewBiLSTM(name string, in, hidden int, rnd *rand.Rand) *BiLSTM {
	return &BiLSTM{Fw: NewLSTM(name+"/forward", in, hidden, false, rnd),
		Bw: NewLSTM(name+"/backward", in, hidden, true, rnd)}
}

//Params returns trainable params
func (l *BiLSTM) Params() []*Param {
	return CollectParams(l.Fw, l.Bw)
}

//Forward returns batch x 2h matrices, forward part first
func (l *BiLSTM) Forward(xs []*mat.Dense) []*mat.Dense {
	fw, bw := l.Fw.Forward(xs), l.Bw.Forward(xs)
	res := make([]*mat.Dense, len(xs))
	for t := range xs {
		res[t] = &mat.Dense{}
		res[t].Augment(fw[t], bw[t])
	}
	return res
}

//Backward splits the gradients between directions and sums input gradients
func (l *BiLSTM) Backward(dhs []*mat.Dense) []*mat.Dense {
	h := l.Fw.Hidden
	dfw, dbw := make([]*mat.Dense, len(dhs)), make([]*mat.Dense, len(dhs))
	for t, d := range dhs {
		dfw[t] = sliceCols(d, 0, h)
		dbw[t] = sliceCols(d, h, 2*h)
	}
	res := l.Fw.Backward(dfw)
	for t, d := range l.Bw.Backward(dbw) {
		res[t].Add(res[t], d)
	}
	return res
}
