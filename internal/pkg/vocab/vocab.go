package vocab

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

//UnknownToken is the first vocabulary entry, its id doubles as padding
const UnknownToken = "<UKN>"

//Vocabulary maps tokens to ids and back
type Vocabulary struct {
	toID  map[string]int
	toStr []string
}

//New creates vocabulary from ordered tokens, the position is the id.
//For a repeated token the last position wins
func New(tokens []string) *Vocabulary {
	res := &Vocabulary{toID: make(map[string]int, len(tokens))}
	for i, s := range tokens {
		res.toID[s] = i
		res.toStr = append(res.toStr, s)
	}
	return res
}

//Read loads vocabulary, one token per line
func Read(r io.Reader) (*Vocabulary, error) {
	tokens := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		tokens = append(tokens, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't read vocabulary")
	}
	return New(tokens), nil
}

//ReadFile loads vocabulary from file
func ReadFile(file string) (*Vocabulary, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open "+file)
	}
	defer f.Close()
	res, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read "+file)
	}
	return res, nil
}

//ID returns token id, 0 for unknown token
func (v *Vocabulary) ID(token string) int {
	return v.toID[token]
}

//Has checks if token is in vocabulary
func (v *Vocabulary) Has(token string) bool {
	_, f := v.toID[token]
	return f
}

//Token returns token by id or "" if id is out of range
func (v *Vocabulary) Token(id int) string {
	if id < 0 || id >= len(v.toStr) {
		return ""
	}
	return v.toStr[id]
}

//Size returns number of ids
func (v *Vocabulary) Size() int {
	return len(v.toStr)
}

//IDs maps tokens to ids
func (v *Vocabulary) IDs(tokens []string) []int {
	res := make([]int, len(tokens))
	for i, s := range tokens {
		res[i] = v.ID(s)
	}
	return res
}

//Tokens maps ids to tokens
func (v *Vocabulary) Tokens(ids []int) []string {
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = v.Token(id)
	}
	return res
}
