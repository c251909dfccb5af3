package corpus

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

//EndMarker closes a sentence in the corpus file
const EndMarker = "end"

//Sentence is a tagged sentence
type Sentence struct {
	Tokens []string
	Tags   []string
}

//Len returns the number of tokens
func (s *Sentence) Len() int {
	return len(s.Tokens)
}

//Read parses 'token tag' lines. A line 'end' or a blank line closes the sentence,
//a malformed line drops the sentence being built
func Read(r io.Reader) ([]Sentence, error) {
	var res []Sentence
	var cur Sentence
	flush := func() {
		if cur.Len() > 0 {
			res = append(res, cur)
		}
		cur = Sentence{}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == EndMarker {
			flush()
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			cur = Sentence{}
			continue
		}
		cur.Tokens = append(cur.Tokens, fields[0])
		cur.Tags = append(cur.Tags, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't read corpus")
	}
	flush()
	return res, nil
}

//ReadFile reads corpus file
func ReadFile(file string) ([]Sentence, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open %s", file)
	}
	defer f.Close()
	res, err := Read(f)
	return res, errors.Wrapf(err, "Can't read %s", file)
}
