package corpus

import (
	"sort"

	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/airenas/nercrf/internal/pkg/dataset"
	"github.com/airenas/nercrf/internal/pkg/vocab"
	"github.com/pkg/errors"
)

//BuildVocab collects tokens and tags from the corpus files and writes
//the vocabulary and tag files. Existing files are left untouched
func BuildVocab(files []string, vocabFile, tagFile string) error {
	tokens, tags := map[string]bool{}, map[string]bool{}
	for _, f := range files {
		sentences, err := ReadFile(f)
		if err != nil {
			return err
		}
		for _, s := range sentences {
			for i := range s.Tokens {
				tokens[s.Tokens[i]] = true
				tags[s.Tags[i]] = true
			}
		}
	}
	delete(tokens, vocab.UnknownToken)
	if !vocab.Exists(vocabFile) {
		cmdapp.Log.Infof("Writing %s", vocabFile)
		if err := vocab.WriteFile(vocabFile, append([]string{vocab.UnknownToken}, sorted(tokens)...)); err != nil {
			return errors.Wrap(err, "Can't write vocab")
		}
	}
	if !vocab.Exists(tagFile) {
		cmdapp.Log.Infof("Writing %s", tagFile)
		if err := vocab.WriteFile(tagFile, sorted(tags)); err != nil {
			return errors.Wrap(err, "Can't write tags")
		}
	}
	return nil
}

//Tokenize maps sentences to ids. Unknown tokens and tags map to 0
func Tokenize(sentences []Sentence, words, tags *vocab.Vocabulary) []dataset.Example {
	res := make([]dataset.Example, len(sentences))
	for i, s := range sentences {
		res[i] = dataset.Example{Tokens: words.IDs(s.Tokens), Labels: tags.IDs(s.Tags)}
	}
	return res
}

//TokenizeFile reads and tokenizes corpus file
func TokenizeFile(file string, words, tags *vocab.Vocabulary) ([]dataset.Example, error) {
	sentences, err := ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Tokenize(sentences, words, tags), nil
}

func sorted(m map[string]bool) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
