package dataset

//Example is one tokenized sentence with its labels
type Example struct {
	Tokens []int
	Labels []int
}

//Batch is a rectangular post padded set of examples
type Batch struct {
	Text    [][]int
	Labels  [][]int
	Lengths []int
}

//Size returns number of examples in the batch
func (b *Batch) Size() int {
	return len(b.Text)
}

//MaxLen returns padded length of the batch
func (b *Batch) MaxLen() int {
	if len(b.Text) == 0 {
		return 0
	}
	return len(b.Text[0])
}

//NewBatch pads examples with 0 to the longest one
func NewBatch(examples []Example) *Batch {
	maxLen := 0
	for _, e := range examples {
		if len(e.Tokens) > maxLen {
			maxLen = len(e.Tokens)
		}
	}
	res := &Batch{Text: make([][]int, len(examples)), Labels: make([][]int, len(examples)),
		Lengths: make([]int, len(examples))}
	for i, e := range examples {
		res.Text[i] = PadSequence(e.Tokens, maxLen)
		res.Labels[i] = PadSequence(e.Labels, maxLen)
		res.Lengths[i] = len(e.Tokens)
	}
	return res
}

//PadSequence returns a copy of seq post padded with 0 to the length l.
//Longer sequences are truncated from the end
func PadSequence(seq []int, l int) []int {
	res := make([]int, l)
	copy(res, seq)
	return res
}
