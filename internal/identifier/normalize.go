// Package identifier holds the pure building blocks shared by the username
// and slug policies: normalization of raw input into a canonical candidate,
// and collision resolution against a caller-supplied existence probe.
package identifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and drops the combining marks,
// so "Café" folds to "Cafe" before the alphabet filter runs.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify reduces raw to the slug alphabet: lowercase letters, digits, and
// single hyphens standing in for any run of other characters. Total over all
// input; an unslugifiable string maps to "". Idempotent.
func Slugify(raw string) string {
	s := fold(strings.ToLower(strings.TrimSpace(raw)))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// UsernameBase reduces raw to the username alphabet (lowercase letters,
// digits, underscore), stripping a leading @ first. Characters outside the
// alphabet are dropped rather than replaced, so "Jo hn!" becomes "john".
// Total and idempotent like Slugify.
func UsernameBase(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	s = fold(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
