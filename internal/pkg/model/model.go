package model

import (
	"math/rand"

	"github.com/airenas/nercrf/internal/pkg/crf"
	"github.com/airenas/nercrf/internal/pkg/nn"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//Config keeps the model dimensions
type Config struct {
	VocabSize     int
	LabelSize     int
	HiddenNum     int
	EmbeddingSize int
	Dropout       float64
}

//Validate checks dims
func (c Config) Validate() error {
	if c.VocabSize <= 0 || c.LabelSize <= 0 || c.HiddenNum <= 0 || c.EmbeddingSize <= 0 {
		return errors.Errorf("Wrong model dims: vocab %d, labels %d, hidden %d, embedding %d",
			c.VocabSize, c.LabelSize, c.HiddenNum, c.EmbeddingSize)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return errors.Errorf("Wrong dropout %f", c.Dropout)
	}
	return nil
}

//SameDims checks if the parameter shapes of both configs match
func (c Config) SameDims(o Config) bool {
	return c.VocabSize == o.VocabSize && c.LabelSize == o.LabelSize &&
		c.HiddenNum == o.HiddenNum && c.EmbeddingSize == o.EmbeddingSize
}

//Output is the result of a forward pass.
//Emissions are batch x max_len x labels, LogLikelihood is nil without labels
type Output struct {
	Emissions     [][][]float64
	Lengths       []int
	LogLikelihood []float64
}

//NerModel is an embedding, dropout, BiLSTM, dense projection and CRF tagger
type NerModel struct {
	cfg         Config
	embedding   *nn.Embedding
	dropout     *nn.Dropout
	encoder     *nn.BiLSTM
	dense       *nn.Dense
	transitions *nn.Param

	last *forwardCache
}

type forwardCache struct {
	batch, steps int
	lengths      []int
	crf          []*crf.Result
}

//New creates randomly initialized model
func New(cfg Config, rnd *rand.Rand) (*NerModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := &NerModel{cfg: cfg}
	res.embedding = nn.NewEmbedding("embedding", cfg.VocabSize, cfg.EmbeddingSize, rnd)
	res.dropout = nn.NewDropout(cfg.Dropout, rnd)
	res.encoder = nn.NewBiLSTM("bilstm", cfg.EmbeddingSize, cfg.HiddenNum, rnd)
	res.dense = nn.NewDense("dense", 2*cfg.HiddenNum, cfg.LabelSize, rnd)
	res.transitions = nn.NewParam("transitions", cfg.LabelSize, cfg.LabelSize)
	nn.Uniform(res.transitions.Value, rnd, 0, 1)
	return res, nil
}

//Config returns model config
func (m *NerModel) Config() Config {
	return m.cfg
}

//Params returns all trainable params, transitions are the last
func (m *NerModel) Params() []*nn.Param {
	return append(nn.CollectParams(m.embedding, m.encoder, m.dense), m.transitions)
}

//Transitions returns the CRF transition matrix
func (m *NerModel) Transitions() *mat.Dense {
	return m.transitions.Value
}

//ZeroGrad clears gradients of all params
func (m *NerModel) ZeroGrad() {
	for _, p := range m.Params() {
		p.ZeroGrad()
	}
}

//State returns a copy of all param values
func (m *NerModel) State() []nn.Matrix {
	return nn.Snapshot(m.Params())
}

//SetState restores param values
func (m *NerModel) SetState(values []nn.Matrix) error {
	return errors.Wrap(nn.Restore(m.Params(), values), "Can't restore model")
}

//SequenceLengths counts the leading non zero ids of every row
func SequenceLengths(text [][]int) []int {
	res := make([]int, len(text))
	for i, row := range text {
		for _, id := range row {
			if id == 0 {
				break
			}
			res[i]++
		}
	}
	return res
}

//Forward runs the model. When labels are provided the CRF log-likelihood of every
//example is calculated and the pass is kept for Backward
func (m *NerModel) Forward(text, labels [][]int, training bool) (*Output, error) {
	if labels != nil {
		if err := checkSameShape(text, labels); err != nil {
			return nil, err
		}
	}
	return m.run(text, labels, SequenceLengths(text), training)
}

//EmissionsWithLengths runs inference with the given lengths
func (m *NerModel) EmissionsWithLengths(text [][]int, lengths []int) (*Output, error) {
	if len(lengths) != len(text) {
		return nil, errors.Errorf("Lengths count %d != batch size %d", len(lengths), len(text))
	}
	for i, l := range lengths {
		if l < 0 || l > len(text[i]) {
			return nil, errors.Errorf("Wrong length %d for row %d", l, i)
		}
	}
	return m.run(text, nil, lengths, false)
}

func (m *NerModel) run(text, labels [][]int, lengths []int, training bool) (*Output, error) {
	m.last = nil
	xs, err := m.embedding.Forward(text)
	if err != nil {
		return nil, errors.Wrap(err, "Can't embed")
	}
	xs = m.dropout.Forward(xs, training)
	logits := m.dense.Forward(m.encoder.Forward(xs))

	b, steps := len(text), len(logits)
	res := &Output{Lengths: lengths, Emissions: make([][][]float64, b)}
	for bi := 0; bi < b; bi++ {
		res.Emissions[bi] = make([][]float64, steps)
		for t := 0; t < steps; t++ {
			res.Emissions[bi][t] = append([]float64(nil), logits[t].RawRowView(bi)...)
		}
	}
	if labels == nil {
		return res, nil
	}
	cache := &forwardCache{batch: b, steps: steps, lengths: lengths, crf: make([]*crf.Result, b)}
	res.LogLikelihood = make([]float64, b)
	for bi := 0; bi < b; bi++ {
		l := lengths[bi]
		r, err := crf.LogLikelihood(res.Emissions[bi][:l], labels[bi][:l], m.transitions.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't calculate likelihood for row %d", bi)
		}
		cache.crf[bi] = r
		res.LogLikelihood[bi] = r.LogLikelihood
	}
	m.last = cache
	return res, nil
}

//Backward accumulates gradients of sum(dLogLikelihood[b] * LogLikelihood[b])
//of the last forward pass with labels
func (m *NerModel) Backward(dLogLikelihood []float64) error {
	c := m.last
	if c == nil {
		return errors.New("No forward pass with labels")
	}
	if len(dLogLikelihood) != c.batch {
		return errors.Errorf("Gradient size %d != batch size %d", len(dLogLikelihood), c.batch)
	}
	l := m.cfg.LabelSize
	dLogits := make([]*mat.Dense, c.steps)
	for t := range dLogits {
		dLogits[t] = mat.NewDense(c.batch, l, nil)
	}
	for bi, r := range c.crf {
		w := dLogLikelihood[bi]
		for t, row := range r.DEmissions {
			dst := dLogits[t].RawRowView(bi)
			for j, v := range row {
				dst[j] = w * v
			}
		}
		if r.DTransitions != nil {
			var g mat.Dense
			g.Scale(w, r.DTransitions)
			m.transitions.Grad.Add(m.transitions.Grad, &g)
		}
	}
	dxs := m.encoder.Backward(m.dense.Backward(dLogits))
	m.embedding.Backward(m.dropout.Backward(dxs))
	return nil
}

func checkSameShape(text, labels [][]int) error {
	if len(text) != len(labels) {
		return errors.Errorf("Batch size mismatch: text %d, labels %d", len(text), len(labels))
	}
	for i := range text {
		if len(text[i]) != len(labels[i]) {
			return errors.Errorf("Row %d len mismatch: text %d, labels %d", i, len(text[i]), len(labels[i]))
		}
	}
	return nil
}
