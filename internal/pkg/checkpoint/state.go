package checkpoint

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	"github.com/airenas/nercrf/internal/pkg/model"
	"github.com/airenas/nercrf/internal/pkg/nn"
	"github.com/pkg/errors"
)

//Meta describes the training moment of the snapshot
type Meta struct {
	RunID    string
	Step     int
	Epoch    int
	Loss     float64
	Accuracy float64
	Time     time.Time
}

//State is a durable snapshot of the model and the optimizer
type State struct {
	Meta      Meta
	Config    model.Config
	Params    []nn.Matrix
	Optimizer nn.AdamState
}

//Load reads the state from file
func Load(file string) (*State, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read "+file)
	}
	res := &State{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(res); err != nil {
		return nil, errors.Wrap(err, "Can't decode "+file)
	}
	return res, nil
}

func encode(st *State) ([]byte, error) {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(st); err != nil {
		return nil, errors.Wrap(err, "Can't encode state")
	}
	return b.Bytes(), nil
}
