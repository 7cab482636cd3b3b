package internal

import (
	"strings"
)

// Match is a single tag occurrence found in a text.
//
// A well formed match is either self-closing ([tag /]), paired with its
// closing tag ([tag]content[/tag]), or a lone opening tag ([tag]) when no
// closing tag follows.
type Match struct {
	// Start and End are byte offsets of the matched span in the source text.
	Start int
	End   int
	// Text is the matched span, source[Start:End].
	Text string

	// LeadEscape is set when the tag opens with a doubled bracket ("[[").
	LeadEscape bool
	// Name is the tag name.
	Name string
	// RawAttrs is the unparsed attribute fragment following the name.
	RawAttrs string
	// SelfClosing is set for tags terminated by "/]".
	SelfClosing bool
	// Content is the text between the opening tag and its closing tag.
	Content string
	// HasContent is set when a closing tag was found.
	HasContent bool
	// ContentStart and ContentEnd locate Content in the source text.
	ContentStart int
	ContentEnd   int
	// TrailEscape is set when a "]" directly follows the tag.
	TrailEscape bool
}

// Escaped reports whether the match is wrapped in doubled brackets and
// must be output as literal text.
func (m Match) Escaped() bool {
	return m.LeadEscape && m.TrailEscape
}

// Markers returns the escape markers of the match that are not part of a
// full escape pair, in the form they appear in the source.
func (m Match) Markers() (lead, trail string) {
	if m.LeadEscape {
		lead = string(CharOpenBracket)
	}
	if m.TrailEscape {
		trail = string(CharCloseBracket)
	}
	return lead, trail
}

// Literal returns the match with one layer of brackets removed.
//
// Both escape styles produce the same literal:
//
//	[[tag]content[/tag]]    -> [tag]content[/tag]
//	[[tag]]content[[/tag]]  -> [tag]content[/tag]
func (m Match) Literal() string {
	if len(m.Text) < 2 {
		return m.Text
	}
	if !m.HasContent || len(m.Content) < 2 ||
		m.Content[0] != CharCloseBracket || m.Content[len(m.Content)-1] != CharOpenBracket {
		return m.Text[1 : len(m.Text)-1]
	}

	// Doubled brackets on both the opening and the closing tag
	cs := m.ContentStart - m.Start
	ce := m.ContentEnd - m.Start
	var sb strings.Builder
	sb.Grow(len(m.Text))
	sb.WriteString(m.Text[1:cs])
	sb.WriteString(m.Text[cs+1 : ce-1])
	sb.WriteString(m.Text[ce : len(m.Text)-1])
	return sb.String()
}

// FindAll returns every non-overlapping tag match in text, in order.
// Scanning resumes after the end of each match; after a failed attempt it
// resumes one byte further.
func FindAll(text string) []Match {
	var matches []Match
	pos := 0
	for pos < len(text) {
		idx := strings.IndexByte(text[pos:], CharOpenBracket)
		if idx < 0 {
			break
		}
		pos += idx

		m, ok := MatchAt(text, pos)
		if !ok {
			pos++
			continue
		}
		matches = append(matches, m)
		pos = m.End
	}
	return matches
}

// ReplaceAll calls fn for every match in text and substitutes the returned
// string for the matched span. Text outside of matches is copied unchanged.
// The first error returned by fn stops the replacement.
func ReplaceAll(text string, fn func(Match) (string, error)) (string, error) {
	matches := FindAll(text)
	if len(matches) == 0 {
		return text, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, m := range matches {
		out, err := fn(m)
		if err != nil {
			return "", err
		}
		sb.WriteString(text[last:m.Start])
		sb.WriteString(out)
		last = m.End
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// MatchAt attempts to match a tag starting exactly at pos.
func MatchAt(text string, pos int) (Match, bool) {
	n := len(text)
	if pos < 0 || pos >= n || text[pos] != CharOpenBracket {
		return Match{}, false
	}

	m := Match{Start: pos}
	p := pos + 1

	if p < n && text[p] == CharOpenBracket {
		m.LeadEscape = true
		p++
	}

	// Tag name: a maximal run of lower-case letters which must not run
	// into another word character or a hyphen.
	nameStart := p
	for p < n && isLower(text[p]) {
		p++
	}
	if p-nameStart < MinNameLength {
		return Match{}, false
	}
	if p < n && isNameBoundaryViolation(text[p]) {
		return Match{}, false
	}
	m.Name = text[nameStart:p]

	// The attribute fragment cannot contain "]", so the tag head always
	// ends at the first one.
	closeIdx := strings.IndexByte(text[p:], CharCloseBracket)
	if closeIdx < 0 {
		return Match{}, false
	}
	headEnd := p + closeIdx

	end := headEnd + 1
	if headEnd > p && text[headEnd-1] == CharSlash {
		m.RawAttrs = text[p : headEnd-1]
		m.SelfClosing = true
	} else {
		m.RawAttrs = text[p:headEnd]
		closeTag := StrCloseTagOpen + m.Name + StrCloseTagClose
		if k := strings.Index(text[end:], closeTag); k >= 0 {
			m.HasContent = true
			m.ContentStart = end
			m.ContentEnd = end + k
			m.Content = text[m.ContentStart:m.ContentEnd]
			end = m.ContentEnd + len(closeTag)
		}
	}

	if end < n && text[end] == CharCloseBracket {
		m.TrailEscape = true
		end++
	}

	m.End = end
	m.Text = text[m.Start:m.End]
	return m, true
}

func isLower(ch byte) bool {
	return ch >= 'a' && ch <= 'z'
}

// isNameBoundaryViolation reports whether ch would continue a tag name:
// an ASCII word character or a hyphen.
func isNameBoundaryViolation(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == CharUnderscore ||
		ch == CharHyphen
}
