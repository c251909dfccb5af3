package train

import (
	"context"
	"math/rand"
	"time"

	"github.com/airenas/nercrf/internal/pkg/checkpoint"
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/dataset"
	"github.com/airenas/nercrf/internal/pkg/eval"
	"github.com/airenas/nercrf/internal/pkg/messages"
	"github.com/airenas/nercrf/internal/pkg/model"
	"github.com/airenas/nercrf/internal/pkg/nn"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/airenas/nercrf/internal/pkg/progress"
	"github.com/airenas/nercrf/internal/pkg/status"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

//CheckpointSaver persists model snapshots
type CheckpointSaver interface {
	Save(st *checkpoint.State) (string, error)
}

//AccuracyFunc scores emissions against gold labels
type AccuracyFunc func(emissions [][][]float64, lengths []int, labels [][]int, trans mat.Matrix) (float64, error)

//Params keeps training loop settings
type Params struct {
	RunID     string
	BatchSize int
	Epochs    int
	EvalEvery int
	HeldOut   bool
	Topic     string
}

//Trainer owns the model, the optimizer and the run state
type Trainer struct {
	Model     *model.NerModel
	Optimizer *nn.Adam
	Saver     CheckpointSaver
	Train     *dataset.Dataset
	Test      *dataset.Dataset
	Params    Params
	Rnd       *rand.Rand
	Accuracy  AccuracyFunc

	Progress  []persistence.ProgressSaver
	Publisher messages.Publisher

	metrics *trainMetrics
	best    float64
	step    int
}

//NewTrainer creates trainer with the Viterbi accuracy
func NewTrainer(m *model.NerModel, opt *nn.Adam, saver CheckpointSaver, params Params, rnd *rand.Rand) (*Trainer, error) {
	if params.BatchSize <= 0 {
		return nil, errors.Errorf("Wrong batch size %d", params.BatchSize)
	}
	if params.EvalEvery <= 0 {
		return nil, errors.Errorf("Wrong eval every %d", params.EvalEvery)
	}
	return &Trainer{Model: m, Optimizer: opt, Saver: saver, Params: params, Rnd: rnd, Accuracy: eval.Accuracy,
		Train: dataset.New(nil), Test: dataset.New(nil)}, nil
}

//Restore loads the latest checkpoint from dir. Returns false if there is none
func (t *Trainer) Restore(dir string) (bool, error) {
	p, err := checkpoint.Latest(dir)
	if err != nil || p == "" {
		return false, err
	}
	cmdapp.Log.Infof("Restoring %s", p)
	st, err := checkpoint.Load(p)
	if err != nil {
		return false, err
	}
	if !st.Config.SameDims(t.Model.Config()) {
		return false, errors.Errorf("Checkpoint %s dims %+v do not match model %+v", p, st.Config, t.Model.Config())
	}
	if err := t.Model.SetState(st.Params); err != nil {
		return false, err
	}
	if err := t.Optimizer.SetState(t.Model.Params(), st.Optimizer); err != nil {
		return false, errors.Wrap(err, "Can't restore optimizer")
	}
	cmdapp.Log.Infof("Restored run %s, step %d, accuracy %.4f", st.Meta.RunID, st.Meta.Step, st.Meta.Accuracy)
	return true, nil
}

//TrainStep makes one optimizer update on the batch.
//Returns loss and the forward output for accuracy calculation
func (t *Trainer) TrainStep(text, labels [][]int) (float64, *model.Output, error) {
	b := len(text)
	if b == 0 {
		return 0, nil, errors.New("Empty batch")
	}
	t.Model.ZeroGrad()
	out, err := t.Model.Forward(text, labels, true)
	if err != nil {
		return 0, nil, err
	}
	loss := 0.0
	dLL := make([]float64, b)
	for i, ll := range out.LogLikelihood {
		loss -= ll
		dLL[i] = -1 / float64(b)
	}
	loss /= float64(b)
	if err := t.Model.Backward(dLL); err != nil {
		return 0, nil, err
	}
	t.Optimizer.Step(t.Model.Params())
	return loss, out, nil
}

//Run trains for the configured epochs. Checkpoints are saved only when
//the evaluated accuracy beats the best one of this run
func (t *Trainer) Run(ctx context.Context) error {
	t.best, t.step = 0, 0
	err := t.run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		t.report(&persistence.Progress{Status: status.Name(status.Failed), Step: t.step, Error: err.Error()})
	}
	return err
}

func (t *Trainer) run(ctx context.Context) error {
	bs := t.Params.BatchSize
	total := t.Params.Epochs * (t.Train.Len() / bs)
	testBatches := t.Test.Batches(bs, t.Rnd)
	cmdapp.Log.Infof("Train examples %d, test examples %d, steps %d", t.Train.Len(), t.Test.Len(), total)
	t.report(&persistence.Progress{Status: status.Name(status.Started), TotalSteps: total})

	for epoch := 0; epoch < t.Params.Epochs; epoch++ {
		for _, batch := range t.Train.Batches(bs, t.Rnd) {
			if err := ctx.Err(); err != nil {
				cmdapp.Log.Info("Training canceled")
				t.report(&persistence.Progress{Status: status.Name(status.Canceled), Epoch: epoch, Step: t.step,
					TotalSteps: total})
				return err
			}
			t.step++
			start := time.Now()
			loss, out, err := t.TrainStep(batch.Text, batch.Labels)
			if err != nil {
				return errors.Wrapf(err, "Can't train step %d", t.step)
			}
			t.metrics.observeStep(time.Since(start), loss)
			if t.step%t.Params.EvalEvery != 0 {
				continue
			}
			if err := t.evaluate(epoch, total, loss, out, batch); err != nil {
				return err
			}
		}
		if t.Params.HeldOut {
			t.logHeldOut(epoch, testBatches)
		}
	}
	t.report(&persistence.Progress{Status: status.Name(status.Finished), Epoch: t.Params.Epochs - 1, Step: t.step,
		TotalSteps: total})
	cmdapp.Log.Info("finished")
	return nil
}

func (t *Trainer) evaluate(epoch, total int, loss float64, out *model.Output, batch *dataset.Batch) error {
	acc, err := t.Accuracy(out.Emissions, out.Lengths, batch.Labels, t.Model.Transitions())
	if err != nil {
		return errors.Wrapf(err, "Can't evaluate step %d", t.step)
	}
	cmdapp.Log.Infof("train --- epoch %d, step %d, loss %.4f , accuracy %.4f", epoch, t.step, loss, acc)
	p := &persistence.Progress{Status: status.Name(status.Training), Epoch: epoch, Step: t.step, TotalSteps: total,
		Loss: loss, Accuracy: acc}
	if acc > t.best {
		t.best = acc
		file, err := t.save(epoch, loss, acc)
		if err != nil {
			return err
		}
		cmdapp.Log.Info("model saved")
		p.Status, p.Checkpoint = status.Name(status.Saved), file
		t.publish(messages.NewModelSaved(t.Params.RunID, file, epoch, t.step, acc))
	}
	t.report(p)
	return nil
}

func (t *Trainer) save(epoch int, loss, acc float64) (string, error) {
	st := &checkpoint.State{
		Meta: checkpoint.Meta{RunID: t.Params.RunID, Step: t.step, Epoch: epoch, Loss: loss, Accuracy: acc,
			Time: time.Now().UTC()},
		Config:    t.Model.Config(),
		Params:    t.Model.State(),
		Optimizer: t.Optimizer.State(t.Model.Params()),
	}
	file, err := t.Saver.Save(st)
	if err != nil {
		return "", errors.Wrapf(err, "Can't save checkpoint at step %d", t.step)
	}
	t.metrics.checkpointSaved()
	return file, nil
}

func (t *Trainer) logHeldOut(epoch int, batches []*dataset.Batch) {
	if len(batches) == 0 {
		cmdapp.Log.Warn("No test batches")
		return
	}
	sum := 0.0
	for _, b := range batches {
		out, err := t.Model.Forward(b.Text, nil, false)
		if err != nil {
			cmdapp.Log.Error(errors.Wrap(err, "Can't run test batch"))
			return
		}
		acc, err := t.Accuracy(out.Emissions, out.Lengths, b.Labels, t.Model.Transitions())
		if err != nil {
			cmdapp.Log.Error(errors.Wrap(err, "Can't evaluate test batch"))
			return
		}
		sum += acc
	}
	acc := sum / float64(len(batches))
	cmdapp.Log.Infof("test --- epoch %d, step %d, accuracy %.4f", epoch, t.step, acc)
	t.metrics.heldOut(acc)
}

func (t *Trainer) report(p *persistence.Progress) {
	p.RunID = t.Params.RunID
	p.Best = t.best
	p.Time = time.Now().UTC()
	p.Percent = progress.Convert(status.From(p.Status), p.Step, p.TotalSteps)
	t.metrics.update(p)
	for _, s := range t.Progress {
		cmdapp.LogIf(s.Save(p))
	}
}

func (t *Trainer) publish(msg *messages.ModelSaved) {
	if t.Publisher == nil {
		return
	}
	cmdapp.LogIf(t.Publisher.Publish(msg, t.Params.Topic))
}

//Best returns the best accuracy of the run
func (t *Trainer) Best() float64 {
	return t.best
}

//Step returns the global step
func (t *Trainer) Step() int {
	return t.step
}
