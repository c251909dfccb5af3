package entity

import (
	"strings"
)

//Entity is a tagged span of tokens, End is exclusive
type Entity struct {
	Begin int    `json:"begin"`
	End   int    `json:"end"`
	Words string `json:"words"`
	Type  string `json:"type"`
}

//Extract collects B/I/E/S prefixed spans. An I or E tag without
//a matching open span starts a new one, O and unknown tags close the open span
func Extract(tokens, tags []string, sep string) []Entity {
	res := make([]Entity, 0)
	begin, typ := -1, ""
	closeAt := func(end int) {
		if begin >= 0 {
			res = append(res, Entity{Begin: begin, End: end, Type: typ,
				Words: strings.Join(tokens[begin:end], sep)})
		}
		begin, typ = -1, ""
	}
	for i := 0; i < len(tags) && i < len(tokens); i++ {
		prefix, t := split(tags[i])
		switch prefix {
		case "B":
			closeAt(i)
			begin, typ = i, t
		case "I", "E":
			if begin < 0 || typ != t {
				closeAt(i)
				begin, typ = i, t
			}
			if prefix == "E" {
				closeAt(i + 1)
			}
		case "S":
			closeAt(i)
			begin, typ = i, t
			closeAt(i + 1)
		default:
			closeAt(i)
		}
	}
	closeAt(min(len(tags), len(tokens)))
	return res
}

func split(tag string) (string, string) {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		return strings.ToUpper(tag[:i]), tag[i+1:]
	}
	return "", ""
}
