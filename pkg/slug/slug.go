// Package slug derives URL-safe story identifiers from titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases the title, folds accented letters to their base form,
// collapses every run of other characters into a single hyphen and trims
// hyphens from both ends.
//
//	"Ferrari F40 Returns" -> "ferrari-f40-returns"
//	"Citroën DS: Déesse"  -> "citroen-ds-deesse"
func Make(title string) string {
	s := strings.ToLower(RemoveDiacritics(title))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix resolves a collision by appending the instant in unix
// milliseconds.
func WithSuffix(base string, at time.Time) string {
	return base + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

// RemoveDiacritics decomposes s and drops the combining marks
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
