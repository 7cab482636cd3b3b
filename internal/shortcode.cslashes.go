package internal

import (
	"strings"
)

// StripCSlashes removes C-style backslash escapes from s.
//
// Recognized sequences are \n \t \r \a \v \b \f \\, hexadecimal \xH or \xHH
// and octal \o, \oo or \ooo. Any other escaped character stands for itself,
// so \" becomes " and \q becomes q. A trailing lone backslash is kept.
func StripCSlashes(s string) string {
	if strings.IndexByte(s, CharBackslash) < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != CharBackslash || i+1 >= len(s) {
			sb.WriteByte(ch)
			continue
		}

		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '\\':
			sb.WriteByte('\\')
		case 'x':
			if i+1 < len(s) && isHexDigit(s[i+1]) {
				val := hexValue(s[i+1])
				i++
				if i+1 < len(s) && isHexDigit(s[i+1]) {
					val = val<<4 | hexValue(s[i+1])
					i++
				}
				sb.WriteByte(val)
				continue
			}
			sb.WriteByte('x')
		default:
			if !isOctalDigit(s[i]) {
				sb.WriteByte(s[i])
				continue
			}
			var val int
			digits := 0
			for i < len(s) && isOctalDigit(s[i]) && digits < 3 {
				val = val<<3 | int(s[i]-'0')
				i++
				digits++
			}
			i--
			sb.WriteByte(byte(val))
		}
	}

	return sb.String()
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch byte) byte {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0'
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10
	default:
		return ch - 'A' + 10
	}
}

func isOctalDigit(ch byte) bool {
	return ch >= '0' && ch <= '7'
}
