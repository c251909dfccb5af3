package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		tags string
		want []Entity
	}{
		{name: "none", tags: "O O O O", want: []Entity{}},
		{name: "bio", tags: "B-PER I-PER O B-LOC",
			want: []Entity{{Begin: 0, End: 2, Words: "ab", Type: "PER"}, {Begin: 3, End: 4, Words: "d", Type: "LOC"}}},
		{name: "bioes", tags: "S-LOC B-ORG I-ORG E-ORG",
			want: []Entity{{Begin: 0, End: 1, Words: "a", Type: "LOC"}, {Begin: 1, End: 4, Words: "bcd", Type: "ORG"}}},
		{name: "orphan I", tags: "O I-PER I-PER O",
			want: []Entity{{Begin: 1, End: 3, Words: "bc", Type: "PER"}}},
		{name: "type change", tags: "B-PER I-LOC O O",
			want: []Entity{{Begin: 0, End: 1, Words: "a", Type: "PER"}, {Begin: 1, End: 2, Words: "b", Type: "LOC"}}},
		{name: "adjacent B", tags: "B-PER B-PER O O",
			want: []Entity{{Begin: 0, End: 1, Words: "a", Type: "PER"}, {Begin: 1, End: 2, Words: "b", Type: "PER"}}},
		{name: "underscore", tags: "B_PER I_PER I_PER I_PER",
			want: []Entity{{Begin: 0, End: 4, Words: "abcd", Type: "PER"}}},
		{name: "unknown tag", tags: "B-PER <UKN> x O",
			want: []Entity{{Begin: 0, End: 1, Words: "a", Type: "PER"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract([]string{"a", "b", "c", "d"}, strings.Fields(tc.tags), "")
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtract_Sep(t *testing.T) {
	got := Extract([]string{"Jonas", "Jonaitis"}, []string{"B-PER", "I-PER"}, " ")
	assert.Equal(t, []Entity{{Begin: 0, End: 2, Words: "Jonas Jonaitis", Type: "PER"}}, got)
}

func TestExtract_Empty(t *testing.T) {
	assert.Equal(t, []Entity{}, Extract(nil, nil, ""))
}
