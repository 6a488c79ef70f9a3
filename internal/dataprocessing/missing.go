package dataprocessing

import "sort"

// DefaultNAValues are the cell texts treated as missing unless disabled
// with WithDefaultNA(false).
var DefaultNAValues = []string{
	"",
	"#N/A",
	"#N/A N/A",
	"#NA",
	"-1.#IND",
	"-1.#QNAN",
	"-NaN",
	"-nan",
	"1.#IND",
	"1.#QNAN",
	"<NA>",
	"N/A",
	"NA",
	"NULL",
	"NaN",
	"None",
	"n/a",
	"nan",
	"null",
}

// alwaysNA stay missing even without the defaults: "" is an absent field
// and gota elements treat the text NaN as NA in every column type.
var alwaysNA = []string{"", "NaN"}

// naSet is the resolved set of missing-value tokens for one load.
type naSet map[string]struct{}

func newNASet(keepDefault bool, extra []string) naSet {
	set := naSet{}
	for _, token := range alwaysNA {
		set[token] = struct{}{}
	}
	if keepDefault {
		for _, token := range DefaultNAValues {
			set[token] = struct{}{}
		}
	}
	for _, token := range extra {
		set[token] = struct{}{}
	}
	return set
}

func (s naSet) contains(value string) bool {
	_, ok := s[value]
	return ok
}

// tokens returns the set as a sorted slice.
func (s naSet) tokens() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
