package nn

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//Matrix is a serializable copy of a named matrix
type Matrix struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

//NewMatrix copies m
func NewMatrix(name string, m mat.Matrix) Matrix {
	r, c := m.Dims()
	res := Matrix{Name: name, Rows: r, Cols: c, Data: make([]float64, 0, r*c)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			res.Data = append(res.Data, m.At(i, j))
		}
	}
	return res
}

//Dense returns a gonum copy of the matrix
func (m Matrix) Dense() *mat.Dense {
	return mat.NewDense(m.Rows, m.Cols, append([]float64(nil), m.Data...))
}

//CopyTo copies values into dst, shapes must match
func (m Matrix) CopyTo(dst *mat.Dense) error {
	r, c := dst.Dims()
	if r != m.Rows || c != m.Cols || len(m.Data) != r*c {
		return errors.Errorf("Wrong shape for %s: %dx%d, expected %dx%d", m.Name, m.Rows, m.Cols, r, c)
	}
	for i := 0; i < r; i++ {
		copy(dst.RawRowView(i), m.Data[i*c:(i+1)*c])
	}
	return nil
}

//Snapshot copies param values
func Snapshot(params []*Param) []Matrix {
	res := make([]Matrix, len(params))
	for i, p := range params {
		res[i] = NewMatrix(p.Name, p.Value)
	}
	return res
}

//Restore copies values into params matching by order and name
func Restore(params []*Param, values []Matrix) error {
	if len(params) != len(values) {
		return errors.Errorf("Wrong param count %d, expected %d", len(values), len(params))
	}
	for i, p := range params {
		if p.Name != values[i].Name {
			return errors.Errorf("Wrong param %s, expected %s", values[i].Name, p.Name)
		}
		if err := values[i].CopyTo(p.Value); err != nil {
			return err
		}
	}
	return nil
}
