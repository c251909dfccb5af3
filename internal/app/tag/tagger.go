package tag

import (
	"math/rand"
	"sync"
	"time"

	"github.com/airenas/nercrf/internal/app/tag/api"
	"github.com/airenas/nercrf/internal/pkg/checkpoint"
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/entity"
	"github.com/airenas/nercrf/internal/pkg/eval"
	"github.com/airenas/nercrf/internal/pkg/model"
	"github.com/airenas/nercrf/internal/pkg/persistence"
	"github.com/airenas/nercrf/internal/pkg/vocab"
	"github.com/pkg/errors"
)

//ErrNoModel indicates that no checkpoint is loaded yet
var ErrNoModel = errors.New("No model loaded")

//modelTagger tags text with the latest loaded checkpoint.
//Inference writes the layer caches so tagging holds the write lock
type modelTagger struct {
	words *vocab.Vocabulary
	tags  *vocab.Vocabulary

	lock  sync.RWMutex
	model *model.NerModel
	info  *persistence.ModelInfo
}

func newModelTagger(words, tags *vocab.Vocabulary) (*modelTagger, error) {
	if words == nil || tags == nil {
		return nil, errors.New("No vocab")
	}
	return &modelTagger{words: words, tags: tags}, nil
}

//Load reads the latest checkpoint from dir and swaps the model
func (t *modelTagger) Load(dir string) error {
	p, err := checkpoint.Latest(dir)
	if err != nil {
		return err
	}
	if p == "" {
		return errors.Errorf("No checkpoint in %s", dir)
	}
	return t.LoadFile(p)
}

//LoadFile reads the checkpoint file and swaps the model
func (t *modelTagger) LoadFile(p string) error {
	st, err := checkpoint.Load(p)
	if err != nil {
		return err
	}
	if st.Config.VocabSize < t.words.Size() {
		return errors.Errorf("Model vocab size %d < vocab file size %d", st.Config.VocabSize, t.words.Size())
	}
	if st.Config.LabelSize != t.tags.Size() {
		return errors.Errorf("Model label size %d != tag count %d", st.Config.LabelSize, t.tags.Size())
	}
	m, err := model.New(st.Config, rand.New(rand.NewSource(1)))
	if err != nil {
		return err
	}
	if err := m.SetState(st.Params); err != nil {
		return err
	}
	info := &persistence.ModelInfo{Checkpoint: p, RunID: st.Meta.RunID, Step: st.Meta.Step,
		Accuracy: st.Meta.Accuracy, Loaded: time.Now().UTC()}

	t.lock.Lock()
	defer t.lock.Unlock()
	t.model, t.info = m, info
	cmdapp.Log.Infof("Loaded %s, run %s, step %d, accuracy %.4f", p, info.RunID, info.Step, info.Accuracy)
	return nil
}

//Tag splits text into runes and decodes the best tag path
func (t *modelTagger) Tag(text string) (*api.Result, error) {
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, string(r))
	}
	res := &api.Result{Text: text, Tokens: tokens, Tags: []string{}, Entities: []entity.Entity{}}

	t.lock.Lock()
	defer t.lock.Unlock()
	if t.model == nil {
		return nil, ErrNoModel
	}
	if len(tokens) == 0 {
		return res, nil
	}
	out, err := t.model.EmissionsWithLengths([][]int{t.words.IDs(tokens)}, []int{len(tokens)})
	if err != nil {
		return nil, errors.Wrap(err, "Can't calculate emissions")
	}
	paths, err := eval.Decode(out.Emissions, out.Lengths, t.model.Transitions())
	if err != nil {
		return nil, errors.Wrap(err, "Can't decode")
	}
	res.Tags = t.tags.Tokens(paths[0])
	res.Entities = entity.Extract(tokens, res.Tags, "")
	return res, nil
}

//Info returns the loaded checkpoint info or nil
func (t *modelTagger) Info() *persistence.ModelInfo {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.info == nil {
		return nil
	}
	res := *t.info
	return &res
}

//Ready is a readiness check
func (t *modelTagger) Ready() error {
	if t.Info() == nil {
		return ErrNoModel
	}
	return nil
}
