package shortcode

import (
	"github.com/itsatony/go-shortcode/internal"
)

// Shortcode is one parsed tag occurrence.
// It is built once per match and not modified afterwards.
type Shortcode struct {
	// Name is the tag name, e.g. "youtube" for [youtube id="x" /].
	Name string
	// Params holds the parsed attributes in source order.
	Params *Params
	// Content is the text between the opening and the closing tag.
	// It is empty for self-closing and unclosed tags.
	Content string
	// Raw is the matched source text.
	Raw string
	// SelfClosing is set for tags written as [tag /].
	SelfClosing bool
}

// newShortcode builds a Shortcode from a pattern match.
func newShortcode(m internal.Match) *Shortcode {
	return &Shortcode{
		Name:        m.Name,
		Params:      newParams(internal.ParseAttributes(m.RawAttrs)),
		Content:     m.Content,
		Raw:         m.Text,
		SelfClosing: m.SelfClosing,
	}
}

// Variables returns the render variables for this shortcode: every
// attribute plus the reserved "content" and "shortcode" entries, which take
// precedence over attributes of the same name.
func (s *Shortcode) Variables() map[string]any {
	vars := s.Params.Map()
	vars[VarContent] = s.Content
	vars[VarShortcode] = s
	return vars
}

// IsVerbatim reports whether the tag carries the verbatim flag.
func (s *Shortcode) IsVerbatim() bool {
	return s.Params.IsFlag(AttrVerbatim)
}

// Params is an ordered set of tag attributes.
// Values are either strings (name="value") or the boolean true for flags
// written without a value ([tag flag]).
type Params struct {
	keys   []string
	values map[string]any
}

// NewParams creates an empty attribute set.
func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

func newParams(attrs []internal.Attribute) *Params {
	p := &Params{
		keys:   make([]string, 0, len(attrs)),
		values: make(map[string]any, len(attrs)),
	}
	for _, a := range attrs {
		if a.Flag {
			p.Set(a.Name, true)
		} else {
			p.Set(a.Name, a.Value)
		}
	}
	return p
}

// ParseParams parses a raw attribute fragment such as `src="a.png" wide`.
func ParseParams(fragment string) *Params {
	return newParams(internal.ParseAttributes(fragment))
}

// Set stores a value. An existing key keeps its position.
func (p *Params) Set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get retrieves a value, which is a string or the boolean true.
func (p *Params) Get(key string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[key]
	return v, ok
}

// GetString retrieves a string value.
// Flags and missing keys return false.
func (p *Params) GetString(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetDefault retrieves a string value with a fallback.
func (p *Params) GetDefault(key, defaultVal string) string {
	if s, ok := p.GetString(key); ok {
		return s
	}
	return defaultVal
}

// IsFlag reports whether key was given as a bare flag.
func (p *Params) IsFlag(key string) bool {
	v, ok := p.Get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Has checks if an attribute exists.
func (p *Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys returns the attribute names in source order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of attributes.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Map returns a copy of all attributes as a map.
func (p *Params) Map() map[string]any {
	if p == nil {
		return make(map[string]any)
	}
	m := make(map[string]any, len(p.values)+2)
	for k, v := range p.values {
		m[k] = v
	}
	return m
}
