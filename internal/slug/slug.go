// Package slug turns titles and sacred-day names into URL-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separators = regexp.MustCompile(`[^a-z0-9]+`)
)

// Make lowercases s, strips accents and joins the remaining
// alphanumeric runs with single hyphens.
//
//	Make("Het-Hor")            // "het-hor"
//	Make("African Royalty Day") // "african-royalty-day"
func Make(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	out := separators.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(out, "-")
}

// Valid reports whether s is already in slug form.
func Valid(s string) bool {
	return s != "" && Make(s) == s
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
