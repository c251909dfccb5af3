package nn

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//Adam optimizer with bias corrected step size
type Adam struct {
	LR      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64

	t int
	m map[string]*mat.Dense
	v map[string]*mat.Dense
}

//AdamState is a serializable optimizer state
type AdamState struct {
	T int
	M []Matrix
	V []Matrix
}

//NewAdam creates optimizer with the default betas and epsilon
func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-7,
		m: map[string]*mat.Dense{}, v: map[string]*mat.Dense{}}
}

//Iterations returns the number of applied updates
func (a *Adam) Iterations() int {
	return a.t
}

//Step applies one update from the accumulated gradients
func (a *Adam) Step(params []*Param) {
	a.t++
	t := float64(a.t)
	lrT := a.LR * math.Sqrt(1-math.Pow(a.Beta2, t)) / (1 - math.Pow(a.Beta1, t))
	for _, p := range params {
		r, c := p.Dims()
		m, v := a.m[p.Name], a.v[p.Name]
		if m == nil {
			m, v = mat.NewDense(r, c, nil), mat.NewDense(r, c, nil)
			a.m[p.Name], a.v[p.Name] = m, v
		}
		for i := 0; i < r; i++ {
			pr, gr, mr, vr := p.Value.RawRowView(i), p.Grad.RawRowView(i), m.RawRowView(i), v.RawRowView(i)
			for j := 0; j < c; j++ {
				mr[j] = a.Beta1*mr[j] + (1-a.Beta1)*gr[j]
				vr[j] = a.Beta2*vr[j] + (1-a.Beta2)*gr[j]*gr[j]
				pr[j] -= lrT * mr[j] / (math.Sqrt(vr[j]) + a.Epsilon)
			}
		}
	}
}

//State returns a copy of the optimizer state ordered by params
func (a *Adam) State(params []*Param) AdamState {
	res := AdamState{T: a.t}
	for _, p := range params {
		if m := a.m[p.Name]; m != nil {
			res.M = append(res.M, NewMatrix(p.Name, m))
			res.V = append(res.V, NewMatrix(p.Name, a.v[p.Name]))
		}
	}
	return res
}

//SetState restores the optimizer state for params
func (a *Adam) SetState(params []*Param, st AdamState) error {
	if len(st.M) != len(st.V) {
		return errors.Errorf("Wrong optimizer state: %d moments vs %d", len(st.M), len(st.V))
	}
	shapes := map[string]*Param{}
	for _, p := range params {
		shapes[p.Name] = p
	}
	m, v := map[string]*mat.Dense{}, map[string]*mat.Dense{}
	for i := range st.M {
		p, ok := shapes[st.M[i].Name]
		if !ok || st.V[i].Name != st.M[i].Name {
			return errors.Errorf("Unknown optimizer state param %s", st.M[i].Name)
		}
		r, c := p.Dims()
		m[p.Name], v[p.Name] = mat.NewDense(r, c, nil), mat.NewDense(r, c, nil)
		if err := st.M[i].CopyTo(m[p.Name]); err != nil {
			return err
		}
		if err := st.V[i].CopyTo(v[p.Name]); err != nil {
			return err
		}
	}
	a.t, a.m, a.v = st.T, m, v
	return nil
}
