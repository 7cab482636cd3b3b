package internal

// Bracket and marker characters used by the tag pattern
const (
	CharOpenBracket  = '['
	CharCloseBracket = ']'
	CharSlash        = '/'
	CharHyphen       = '-'
	CharUnderscore   = '_'
	CharBackslash    = '\\'
)

// String forms used when building closing tags
const (
	StrCloseTagOpen  = "[/"
	StrCloseTagClose = "]"
)

// MinNameLength is the minimum number of letters in a tag name.
// Shorter bracketed words ([a], [ok]) are never treated as tags.
const MinNameLength = 3

// Attribute grammar patterns.
//
// The alternation order is significant: quoted named values first, then
// single-quoted, then bare named values, then a quoted positional token and
// finally any other non-space run.
const (
	PatternAttributes = `(\w+)\s*=\s*"([^"]*)"(?:\s|$)` +
		`|(\w+)\s*=\s*'([^']*)'(?:\s|$)` +
		`|(\w+)\s*=\s*([^\s'"]+)(?:\s|$)` +
		`|"([^"]*)"(?:\s|$)` +
		`|(\S+)(?:\s|$)`
	PatternSpecialSpaces = `[\x{00a0}\x{200b}]+`
)

// Submatch group numbers of PatternAttributes
const (
	groupDoubleName  = 1
	groupDoubleValue = 2
	groupSingleName  = 3
	groupSingleValue = 4
	groupBareName    = 5
	groupBareValue   = 6
	groupQuotedPos   = 7
	groupBarePos     = 8
)

// SpaceReplacement replaces runs of non-breaking and zero-width spaces.
const SpaceReplacement = " "
