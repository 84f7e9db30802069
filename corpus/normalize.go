package corpus

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var whitespace = strings.NewReplacer("\n", "", "\t", "", "\r", "", " ", "")

// assigned covers every general category except Cn.
var assigned = []*unicode.RangeTable{
	unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z,
	unicode.Cc, unicode.Cf, unicode.Co, unicode.Cs,
}

// isNoise reports runes in So, Cf, Cs or Cn. That is emoji and other
// symbols, zero width and format marks, surrogates and unassigned code
// points, including the U+FFFD left behind by lossy decoding.
func isNoise(r rune) bool {
	if unicode.In(r, unicode.So, unicode.Cf, unicode.Cs) {
		return true
	}
	return !unicode.In(r, assigned...)
}

// Normalize collapses whitespace and drops noise runes. Markup is returned
// untouched since its layout is what makes it readable.
func Normalize(text string, markup bool) string {
	if markup {
		return text
	}
	text = whitespace.Replace(text)
	out, _, err := transform.String(runes.Remove(runes.Predicate(isNoise)), text)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if isNoise(r) {
				return -1
			}
			return r
		}, text)
	}
	return out
}
