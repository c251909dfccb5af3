package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

//LSTM is a single direction recurrent layer returning the full sequence.
//Gates are packed in i, f, c, o order
type LSTM struct {
	Hidden  int
	Reverse bool
	W       *Param // in x 4h
	U       *Param // h x 4h
	B       *Param // 1 x 4h

	steps []*lstmStep
}

type lstmStep struct {
	x, hPrev, cPrev *mat.Dense
	i, f, g, o      *mat.Dense
	tanhC           *mat.Dense
}

//NewLSTM creates layer. Kernel is glorot uniform, recurrent kernel orthogonal, forget bias 1
func NewLSTM(name string, in, hidden int, reverse bool, rnd *rand.Rand) *LSTM {
	res := &LSTM{Hidden: hidden, Reverse: reverse,
		W: NewParam(name+"/kernel", in, 4*hidden),
		U: NewParam(name+"/recurrent_kernel", hidden, 4*hidden),
		B: NewParam(name+"/bias", 1, 4*hidden)}
	GlorotUniform(res.W.Value, rnd)
	Orthogonal(res.U.Value, rnd)
	for j := hidden; j < 2*hidden; j++ {
		res.B.Value.Set(0, j, 1)
	}
	return res
}

//Params returns trainable params
func (l *LSTM) Params() []*Param {
	return []*Param{l.W, l.U, l.B}
}

func (l *LSTM) order(t int) []int {
	res := make([]int, t)
	for i := range res {
		if l.Reverse {
			res[i] = t - 1 - i
		} else {
			res[i] = i
		}
	}
	return res
}

//Forward runs the layer over xs (batch x in per step). Output at index t belongs to input t
func (l *LSTM) Forward(xs []*mat.Dense) []*mat.Dense {
	res := make([]*mat.Dense, len(xs))
	l.steps = make([]*lstmStep, len(xs))
	if len(xs) == 0 {
		return res
	}
	b, _ := xs[0].Dims()
	h := l.Hidden
	hPrev, cPrev := mat.NewDense(b, h, nil), mat.NewDense(b, h, nil)
	for _, t := range l.order(len(xs)) {
		var z, rec mat.Dense
		z.Mul(xs[t], l.W.Value)
		rec.Mul(hPrev, l.U.Value)
		z.Add(&z, &rec)
		addRow(&z, l.B.Value)

		st := &lstmStep{x: xs[t], hPrev: hPrev, cPrev: cPrev,
			i: sliceCols(&z, 0, h), f: sliceCols(&z, h, 2*h), g: sliceCols(&z, 2*h, 3*h), o: sliceCols(&z, 3*h, 4*h)}
		st.i.Apply(sigmoid, st.i)
		st.f.Apply(sigmoid, st.f)
		st.g.Apply(tanh, st.g)
		st.o.Apply(sigmoid, st.o)

		c := mat.NewDense(b, h, nil)
		var ig mat.Dense
		c.MulElem(st.f, cPrev)
		ig.MulElem(st.i, st.g)
		c.Add(c, &ig)
		st.tanhC = mat.NewDense(b, h, nil)
		st.tanhC.Apply(tanh, c)
		hOut := mat.NewDense(b, h, nil)
		hOut.MulElem(st.o, st.tanhC)

		l.steps[t] = st
		res[t] = hOut
		hPrev, cPrev = hOut, c
	}
	return res
}

//Backward propagates dhs (gradients of outputs) through time.
//Accumulates param gradients and returns gradients of inputs
func (l *LSTM) Backward(dhs []*mat.Dense) []*mat.Dense {
	res := make([]*mat.Dense, len(dhs))
	if len(dhs) == 0 {
		return res
	}
	b, _ := dhs[0].Dims()
	h := l.Hidden
	dhNext, dcNext := mat.NewDense(b, h, nil), mat.NewDense(b, h, nil)
	order := l.order(len(dhs))
	for k := len(order) - 1; k >= 0; k-- {
		t := order[k]
		st := l.steps[t]
		dh := mat.NewDense(b, h, nil)
		dh.Add(dhs[t], dhNext)

		dz := mat.NewDense(b, 4*h, nil)
		dc := mat.NewDense(b, h, nil)
		for r := 0; r < b; r++ {
			dhr, dcn := dh.RawRowView(r), dcNext.RawRowView(r)
			ir, fr, gr, or := st.i.RawRowView(r), st.f.RawRowView(r), st.g.RawRowView(r), st.o.RawRowView(r)
			tc, cp := st.tanhC.RawRowView(r), st.cPrev.RawRowView(r)
			dzr, dcr := dz.RawRowView(r), dc.RawRowView(r)
			for j := 0; j < h; j++ {
				do := dhr[j] * tc[j]
				dcr[j] = dcn[j] + dhr[j]*or[j]*(1-tc[j]*tc[j])
				di := dcr[j] * gr[j]
				dg := dcr[j] * ir[j]
				df := dcr[j] * cp[j]
				dzr[j] = di * ir[j] * (1 - ir[j])
				dzr[h+j] = df * fr[j] * (1 - fr[j])
				dzr[2*h+j] = dg * (1 - gr[j]*gr[j])
				dzr[3*h+j] = do * or[j] * (1 - or[j])
			}
		}
		dcNext = mat.NewDense(b, h, nil)
		dcNext.MulElem(dc, st.f)

		addMulTo(l.W.Grad, st.x, dz)
		addMulTo(l.U.Grad, st.hPrev, dz)
		addColSums(l.B.Grad, dz)

		dx := &mat.Dense{}
		dx.Mul(dz, l.W.Value.T())
		res[t] = dx
		dhNext = &mat.Dense{}
		dhNext.Mul(dz, l.U.Value.T())
	}
	return res
}
