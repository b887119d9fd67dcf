package termino

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// accent reports the nonspacing marks NormalizeLemma drops. The kana voicing
// marks are kept: ガス and カス are different words.
func accent(r rune) bool {
	return unicode.Is(unicode.Mn, r) && r != '\u3099' && r != '\u309A'
}

// NormalizeLemma lower-cases s and strips accents, so that "Énergie" and
// "energie" share a key. Inner whitespace is collapsed to single spaces.
func NormalizeLemma(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.Predicate(accent)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(lower.String(out)), " ")
}
