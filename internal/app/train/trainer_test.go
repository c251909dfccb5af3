package train

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/airenas/nercrf/internal/pkg/checkpoint"
	"github.com/airenas/nercrf/internal/pkg/dataset"
	"github.com/airenas/nercrf/internal/pkg/model"
	"github.com/airenas/nercrf/internal/pkg/nn"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/airenas/nercrf/internal/pkg/test/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gonum.org/v1/gonum/mat"
)

var (
	saverMock     *mocks.CheckpointSaver
	progressMock  *mocks.ProgressSaver
	publisherMock *mocks.Publisher
)

func initTest(t *testing.T) {
	saverMock = &mocks.CheckpointSaver{}
	saverMock.On("Save", mock.Anything).Return("out/model.ckpt-1", nil)
	progressMock = &mocks.ProgressSaver{}
	progressMock.On("Save", mock.Anything).Return(nil)
	publisherMock = &mocks.Publisher{}
	publisherMock.On("Publish", mock.Anything, "topic").Return(nil)
}

var testExamples = []dataset.Example{
	{Tokens: []int{1, 2, 3}, Labels: []int{0, 1, 2}},
	{Tokens: []int{4, 5}, Labels: []int{2, 1}},
	{Tokens: []int{1}, Labels: []int{0}},
	{Tokens: []int{5, 4, 3, 2}, Labels: []int{1, 1, 0, 0}},
}

func newTestModel(t *testing.T, seed int64) *model.NerModel {
	t.Helper()
	m, err := model.New(model.Config{VocabSize: 6, LabelSize: 3, HiddenNum: 4, EmbeddingSize: 4, Dropout: 0.5},
		rand.New(rand.NewSource(seed)))
	assert.Nil(t, err)
	return m
}

func newTestTrainer(t *testing.T, params Params) *Trainer {
	t.Helper()
	initTest(t)
	tr, err := NewTrainer(newTestModel(t, 1), nn.NewAdam(0.01), saverMock, params, rand.New(rand.NewSource(1)))
	assert.Nil(t, err)
	tr.Train = dataset.New(testExamples)
	tr.Progress = []persistence.ProgressSaver{progressMock}
	tr.Publisher = publisherMock
	return tr
}

func defaultParams() Params {
	return Params{RunID: "run", BatchSize: 1, Epochs: 1, EvalEvery: 1, Topic: "topic"}
}

func accuracies(values ...float64) (AccuracyFunc, *int) {
	calls := 0
	return func(_ [][][]float64, _ []int, _ [][]int, _ mat.Matrix) (float64, error) {
		res := values[calls%len(values)]
		calls++
		return res, nil
	}, &calls
}

func TestNewTrainer_Fails(t *testing.T) {
	initTest(t)
	p := defaultParams()
	p.BatchSize = 0
	_, err := NewTrainer(newTestModel(t, 1), nn.NewAdam(0.01), saverMock, p, rand.New(rand.NewSource(1)))
	assert.NotNil(t, err)
	p = defaultParams()
	p.EvalEvery = 0
	_, err = NewTrainer(newTestModel(t, 1), nn.NewAdam(0.01), saverMock, p, rand.New(rand.NewSource(1)))
	assert.NotNil(t, err)
}

func TestTrainStep(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	before := tr.Model.State()
	b := dataset.NewBatch(testExamples[:2])

	loss, out, err := tr.TrainStep(b.Text, b.Labels)

	assert.Nil(t, err)
	assert.False(t, math.IsNaN(loss) || math.IsInf(loss, 0))
	assert.GreaterOrEqual(t, loss, 0.0)
	assert.Equal(t, 2, len(out.LogLikelihood))
	assert.InDelta(t, -(out.LogLikelihood[0]+out.LogLikelihood[1])/2, loss, 1e-12)
	assert.Equal(t, []int{3, 2}, out.Lengths)
	assert.Equal(t, 3, len(out.Emissions[0]))
	changed := false
	for i, st := range tr.Model.State() {
		if !mat.Equal(st.Dense(), before[i].Dense()) {
			changed = true
		}
	}
	assert.True(t, changed)
	r, c := tr.Model.Transitions().Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 1, tr.Optimizer.Iterations())
}

func TestTrainStep_Fails(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	_, _, err := tr.TrainStep(nil, nil)
	assert.NotNil(t, err)
	_, _, err = tr.TrainStep([][]int{{1, 2}}, [][]int{{1}})
	assert.NotNil(t, err)
}

func TestTrainStep_LowersLoss(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Model = newTestModelNoDropout(t)
	b := dataset.NewBatch(testExamples)
	first, _, err := tr.TrainStep(b.Text, b.Labels)
	assert.Nil(t, err)
	last := first
	for i := 0; i < 30; i++ {
		last, _, err = tr.TrainStep(b.Text, b.Labels)
		assert.Nil(t, err)
	}
	assert.Less(t, last, first)
}

func newTestModelNoDropout(t *testing.T) *model.NerModel {
	m, err := model.New(model.Config{VocabSize: 6, LabelSize: 3, HiddenNum: 4, EmbeddingSize: 4},
		rand.New(rand.NewSource(3)))
	assert.Nil(t, err)
	return m
}

func TestRun_SavesOnlyOnStrictImprovement(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	var calls *int
	tr.Accuracy, calls = accuracies(0.5, 0.5, 0.3, 0.7)

	err := tr.Run(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, 4, tr.Step())
	assert.Equal(t, 0.7, tr.Best())
	saverMock.AssertNumberOfCalls(t, "Save", 2)
	publisherMock.AssertNumberOfCalls(t, "Publish", 2)
}

func TestRun_NoSaveOnZero(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0)

	assert.Nil(t, tr.Run(context.Background()))

	saverMock.AssertNumberOfCalls(t, "Save", 0)
	publisherMock.AssertNumberOfCalls(t, "Publish", 0)
}

func TestRun_EvalEvery(t *testing.T) {
	p := defaultParams()
	p.EvalEvery = 2
	p.Epochs = 3
	tr := newTestTrainer(t, p)
	var calls *int
	tr.Accuracy, calls = accuracies(0.1, 0.2, 0.3)

	assert.Nil(t, tr.Run(context.Background()))

	assert.Equal(t, 12, tr.Step())
	assert.Equal(t, 6, *calls)
	saverMock.AssertNumberOfCalls(t, "Save", 3)
}

func TestRun_DropsRemainder(t *testing.T) {
	p := defaultParams()
	p.BatchSize = 3
	tr := newTestTrainer(t, p)
	tr.Accuracy, _ = accuracies(0.1)

	assert.Nil(t, tr.Run(context.Background()))

	assert.Equal(t, 1, tr.Step())
}

func TestRun_StateSaved(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0.5)

	assert.Nil(t, tr.Run(context.Background()))

	st := saverMock.Calls[0].Arguments.Get(0).(*checkpoint.State)
	assert.Equal(t, "run", st.Meta.RunID)
	assert.Equal(t, 1, st.Meta.Step)
	assert.Equal(t, 0.5, st.Meta.Accuracy)
	assert.Equal(t, tr.Model.Config(), st.Config)
	assert.Equal(t, len(tr.Model.Params()), len(st.Params))
	assert.Equal(t, 1, st.Optimizer.T)
}

func TestRun_SaveFails(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0.5)
	saverMock.ExpectedCalls = nil
	saverMock.On("Save", mock.Anything).Return("", errors.New("olia"))

	assert.NotNil(t, tr.Run(context.Background()))
	assert.Equal(t, 1, tr.Step())
	progressMock.AssertCalled(t, "Save", mock.MatchedBy(func(p *persistence.Progress) bool {
		return p.Status == "FAILED" && p.Error != ""
	}))
}

func TestRun_AccuracyFails(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy = func(_ [][][]float64, _ []int, _ [][]int, _ mat.Matrix) (float64, error) {
		return 0, errors.New("olia")
	}
	assert.NotNil(t, tr.Run(context.Background()))
}

func TestRun_SinkFailuresIgnored(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0.5, 0.6)
	progressMock.ExpectedCalls = nil
	progressMock.On("Save", mock.Anything).Return(errors.New("olia"))
	publisherMock.ExpectedCalls = nil
	publisherMock.On("Publish", mock.Anything, mock.Anything).Return(errors.New("olia"))

	assert.Nil(t, tr.Run(context.Background()))
	saverMock.AssertNumberOfCalls(t, "Save", 2)
}

func TestRun_Progress(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0.5, 0.4, 0.4, 0.4)

	assert.Nil(t, tr.Run(context.Background()))

	// started, 4 evaluations, finished
	progressMock.AssertNumberOfCalls(t, "Save", 6)
	first := progressMock.Calls[0].Arguments.Get(0).(*persistence.Progress)
	assert.Equal(t, "STARTED", first.Status)
	assert.Equal(t, 4, first.TotalSteps)
	saved := progressMock.Calls[1].Arguments.Get(0).(*persistence.Progress)
	assert.Equal(t, "SAVED", saved.Status)
	assert.Equal(t, "out/model.ckpt-1", saved.Checkpoint)
	assert.Equal(t, "TRAINING", progressMock.Calls[2].Arguments.Get(0).(*persistence.Progress).Status)
	last := progressMock.Calls[5].Arguments.Get(0).(*persistence.Progress)
	assert.Equal(t, "FINISHED", last.Status)
	assert.Equal(t, int32(100), last.Percent)
	assert.Equal(t, 0.5, last.Best)
}

func TestRun_Canceled(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0.5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.Run(ctx)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, tr.Step())
	saverMock.AssertNumberOfCalls(t, "Save", 0)
}

func TestRun_RealAccuracy(t *testing.T) {
	p := defaultParams()
	p.HeldOut = true
	p.Epochs = 2
	tr := newTestTrainer(t, p)
	tr.Train, tr.Test = dataset.New(testExamples).Split(0.5)

	assert.Nil(t, tr.Run(context.Background()))

	assert.Equal(t, 4, tr.Step())
	for _, c := range progressMock.Calls {
		acc := c.Arguments.Get(0).(*persistence.Progress).Accuracy
		assert.GreaterOrEqual(t, acc, 0.0)
		assert.LessOrEqual(t, acc, 1.0)
	}
}

func TestRun_ResetsBest(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	tr.Accuracy, _ = accuracies(0.5)
	assert.Nil(t, tr.Run(context.Background()))
	assert.Nil(t, tr.Run(context.Background()))
	saverMock.AssertNumberOfCalls(t, "Save", 2)
	assert.Equal(t, 4, tr.Step())
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	m, err := checkpoint.NewManager(dir, 3)
	assert.Nil(t, err)
	tr := newTestTrainer(t, defaultParams())
	tr.Saver = m
	tr.Accuracy, _ = accuracies(0.5)
	assert.Nil(t, tr.Run(context.Background()))

	tr2, err := NewTrainer(newTestModel(t, 7), nn.NewAdam(0.01), m, defaultParams(), rand.New(rand.NewSource(1)))
	assert.Nil(t, err)
	ok, err := tr2.Restore(dir)

	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, tr2.Optimizer.Iterations())
	st := latestState(t, dir)
	for i, p := range tr2.Model.State() {
		assert.Equal(t, st.Params[i], p)
	}
}

func latestState(t *testing.T, dir string) *checkpoint.State {
	p, err := checkpoint.Latest(dir)
	assert.Nil(t, err)
	st, err := checkpoint.Load(p)
	assert.Nil(t, err)
	return st
}

func TestRestore_NoCheckpoint(t *testing.T) {
	tr := newTestTrainer(t, defaultParams())
	ok, err := tr.Restore(t.TempDir())
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestRestore_WrongDims(t *testing.T) {
	dir := t.TempDir()
	m, _ := checkpoint.NewManager(dir, 3)
	other, err := model.New(model.Config{VocabSize: 7, LabelSize: 3, HiddenNum: 4, EmbeddingSize: 4},
		rand.New(rand.NewSource(1)))
	assert.Nil(t, err)
	_, err = m.Save(&checkpoint.State{Config: other.Config(), Params: other.State()})
	assert.Nil(t, err)

	tr := newTestTrainer(t, defaultParams())
	_, err = tr.Restore(dir)
	assert.NotNil(t, err)
}
