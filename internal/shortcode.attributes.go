package internal

import (
	"regexp"
	"strings"
)

var (
	attributePattern     = regexp.MustCompile(PatternAttributes)
	specialSpacesPattern = regexp.MustCompile(PatternSpecialSpaces)
)

// Attribute is one parsed tag attribute.
// Flag attributes carry no value: [tag verbatim] yields {Name: "verbatim", Flag: true}.
type Attribute struct {
	Name  string
	Value string
	Flag  bool
}

// ParseAttributes parses a raw attribute fragment into an ordered attribute
// list. Named attributes are lower-cased and keep the position of their first
// occurrence; a repeated name overwrites the earlier value. Positional tokens
// are turned into flags after the pass: an existing attribute with the same
// name becomes a flag in place, new flags are appended in order.
//
// Parsing never fails; tokens that fit no named form degrade to flags.
func ParseAttributes(fragment string) []Attribute {
	if fragment == "" {
		return nil
	}
	text := specialSpacesPattern.ReplaceAllString(fragment, SpaceReplacement)

	set := newAttributeSet()
	var positional []string

	for _, idx := range attributePattern.FindAllStringSubmatchIndex(text, -1) {
		switch {
		case groupSet(idx, groupDoubleName):
			set.put(strings.ToLower(group(text, idx, groupDoubleName)),
				StripCSlashes(group(text, idx, groupDoubleValue)), false)
		case groupSet(idx, groupSingleName):
			set.put(strings.ToLower(group(text, idx, groupSingleName)),
				StripCSlashes(group(text, idx, groupSingleValue)), false)
		case groupSet(idx, groupBareName):
			set.put(strings.ToLower(group(text, idx, groupBareName)),
				StripCSlashes(group(text, idx, groupBareValue)), false)
		case groupSet(idx, groupQuotedPos) && group(text, idx, groupQuotedPos) != "":
			positional = append(positional, StripCSlashes(group(text, idx, groupQuotedPos)))
		case groupSet(idx, groupBarePos):
			positional = append(positional, StripCSlashes(group(text, idx, groupBarePos)))
		}
	}

	for _, name := range positional {
		set.put(name, "", true)
	}

	return set.attrs
}

// groupSet reports whether submatch group g participated in the match.
func groupSet(idx []int, g int) bool {
	return idx[2*g] >= 0
}

func group(text string, idx []int, g int) string {
	if !groupSet(idx, g) {
		return ""
	}
	return text[idx[2*g]:idx[2*g+1]]
}

// attributeSet is an insertion-ordered attribute collection.
type attributeSet struct {
	attrs []Attribute
	index map[string]int
}

func newAttributeSet() *attributeSet {
	return &attributeSet{index: make(map[string]int)}
}

func (s *attributeSet) put(name, value string, flag bool) {
	if i, ok := s.index[name]; ok {
		s.attrs[i].Value = value
		s.attrs[i].Flag = flag
		return
	}
	s.index[name] = len(s.attrs)
	s.attrs = append(s.attrs, Attribute{Name: name, Value: value, Flag: flag})
}
