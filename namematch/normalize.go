// Package namematch compares submitted person names against reference
// watchlist entries.
package namematch

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// honorifics are dropped from names before comparison.
var honorifics = map[string]bool{
	"mr":   true,
	"mrs":  true,
	"ms":   true,
	"miss": true,
	"mx":   true,
	"dr":   true,
	"prof": true,
	"sir":  true,
	"dame": true,
	"lord": true,
	"lady": true,
	"hon":  true,
	"rev":  true,
	"jr":   true,
	"sr":   true,
}

// Fold lowercases s, removes diacritics, replaces every rune that is not a
// letter or digit with a space and collapses runs of whitespace.
// Fold("  José   O'Neil ") == "jose o neil"
func Fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the whitespace separated tokens of Fold(s).
func Tokens(s string) []string {
	return strings.Fields(Fold(s))
}

// Normalize folds a person name and drops honorific tokens.
func Normalize(name string) string {
	tokens := Tokens(name)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !honorifics[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// significantTokens returns the sorted, de-duplicated tokens of a normalized
// name that are at least two runes long. Single letter initials are ignored so
// "donald j trump" and "donald trump" share the same significant tokens.
func significantTokens(normalized string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, tok := range strings.Fields(normalized) {
		if len([]rune(tok)) < 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	slices.Sort(out)
	return out
}
