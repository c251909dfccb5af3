package train

import (
	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/corpus"
	"github.com/airenas/nercrf/internal/pkg/dataset"
	"github.com/airenas/nercrf/internal/pkg/vocab"
	"github.com/pkg/errors"
)

type trainData struct {
	words *vocab.Vocabulary
	tags  *vocab.Vocabulary
	train *dataset.Dataset
	test  *dataset.Dataset
}

func prepareData(trainPath, vocabFile, tagFile string, testRatio float64) (*trainData, error) {
	if !(vocab.Exists(vocabFile) && vocab.Exists(tagFile)) {
		cmdapp.Log.Info("building vocab file")
		if err := corpus.BuildVocab([]string{trainPath}, vocabFile, tagFile); err != nil {
			return nil, errors.Wrap(err, "Can't build vocab")
		}
	} else {
		cmdapp.Log.Info("vocab file exits!!")
	}
	res := &trainData{}
	var err error
	if res.words, err = vocab.ReadFile(vocabFile); err != nil {
		return nil, err
	}
	if res.tags, err = vocab.ReadFile(tagFile); err != nil {
		return nil, err
	}
	examples, err := corpus.TokenizeFile(trainPath, res.words, res.tags)
	if err != nil {
		return nil, err
	}
	res.train, res.test = dataset.New(examples).Split(testRatio)
	return res, nil
}
