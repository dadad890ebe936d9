package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes accented characters and drops the combining marks,
// so "São Paulo" becomes "Sao Paulo" before the regex cleanup.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	nonAlnumRegex   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripAccents returns an ASCII approximation of s with diacritics removed,
// leaving every other character untouched.
func StripAccents(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize cleans OCR-derived free text for reliable comparison: accents are
// stripped, everything that is not a letter, digit or whitespace is removed,
// runs of whitespace collapse to a single space, and the result is trimmed
// and upper-cased. It never fails, whatever the input.
func Normalize(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	out = nonAlnumRegex.ReplaceAllString(out, "")
	out = whitespaceRegex.ReplaceAllString(out, " ")
	return strings.ToUpper(strings.TrimSpace(out))
}
