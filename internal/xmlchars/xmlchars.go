// Package xmlchars classifies bytes and code points against the markup name
// and character grammars.
package xmlchars

import (
	"slices"
	"unicode/utf8"
)

// Range is an inclusive code point range.
type Range struct {
	Lo rune
	Hi rune
}

// nameStartRanges lists NameStartChar above ASCII, sorted and disjoint.
var nameStartRanges = []Range{
	{0xC0, 0xD6},
	{0xD8, 0xF6},
	{0xF8, 0x2FF},
	{0x370, 0x37D},
	{0x37F, 0x1FFF},
	{0x200C, 0x200D},
	{0x2070, 0x218F},
	{0x2C00, 0x2FEF},
	{0x3001, 0xD7FF},
	{0xF900, 0xFDCF},
	{0xFDF0, 0xFFFD},
	{0x10000, 0xEFFFF},
}

// nameExtraRanges lists the NameChar additions above ASCII, sorted and disjoint.
var nameExtraRanges = []Range{
	{0xB7, 0xB7},
	{0x300, 0x36F},
	{0x203F, 0x2040},
}

var nameStartByteLUT = [utf8.RuneSelf]bool{
	':': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'_': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

var nameByteLUT = [utf8.RuneSelf]bool{
	'-': true, '.': true,
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	':': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'_': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

var whitespaceLUT = [256]bool{
	'\t': true,
	'\n': true,
	'\r': true,
	' ':  true,
}

func inRanges(table []Range, r rune) bool {
	i, found := slices.BinarySearchFunc(table, r, func(rg Range, target rune) int {
		switch {
		case rg.Hi < target:
			return -1
		case rg.Lo > target:
			return 1
		default:
			return 0
		}
	})
	return found && i < len(table)
}

// IsNameStart reports whether r may begin a name.
func IsNameStart(r rune) bool {
	if r < utf8.RuneSelf {
		return r >= 0 && nameStartByteLUT[r]
	}
	return inRanges(nameStartRanges, r)
}

// IsNameChar reports whether r may continue a name.
func IsNameChar(r rune) bool {
	if r < utf8.RuneSelf {
		return r >= 0 && nameByteLUT[r]
	}
	return inRanges(nameStartRanges, r) || inRanges(nameExtraRanges, r)
}

// IsWhitespace reports whether b is markup whitespace.
func IsWhitespace(b byte) bool {
	return whitespaceLUT[b]
}

// IsWhitespaceBytes reports whether data is empty or all whitespace.
func IsWhitespaceBytes(data []byte) bool {
	for _, b := range data {
		if !whitespaceLUT[b] {
			return false
		}
	}
	return true
}

// IsDelimiter reports whether b ends a name inside a tag.
func IsDelimiter(b byte) bool {
	return whitespaceLUT[b] || b == '/' || b == '>' || b == '='
}

// IsValidChar reports whether r is an allowed document character: tab, line
// feed, carriage return, or a code point outside the C0 controls, the
// surrogates, U+FFFE and U+FFFF.
func IsValidChar(r rune) bool {
	if r < 0x20 {
		return r == '\t' || r == '\n' || r == '\r'
	}
	return r <= 0xD7FF || r >= 0xE000 && r <= 0xFFFD || r >= 0x10000 && r <= utf8.MaxRune
}

// ValidNCName reports whether s is a name without colons: a NameStartChar
// followed by NameChars. A leading digit, a colon, or an undecodable byte
// fails.
func ValidNCName(s string) bool {
	if s == "" {
		return false
	}
	first := true
	for i := 0; i < len(s); {
		b := s[i]
		var r rune
		if b < utf8.RuneSelf {
			r = rune(b)
			i++
		} else {
			var size int
			r, size = utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size <= 1 {
				return false
			}
			i += size
		}
		if r == ':' {
			return false
		}
		if first {
			if !IsNameStart(r) {
				return false
			}
			first = false
			continue
		}
		if !IsNameChar(r) {
			return false
		}
	}
	return true
}

// Reserved reports whether s begins with "xml" in any letter case.
func Reserved(s string) bool {
	if len(s) < 3 {
		return false
	}
	return (s[0]|0x20) == 'x' && (s[1]|0x20) == 'm' && (s[2]|0x20) == 'l'
}
