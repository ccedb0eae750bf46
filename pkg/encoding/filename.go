// Package encoding provides text helpers for names coming out of building
// models: STEP string escapes and file name sanitizing.
package encoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unnamed replaces names that sanitize to nothing.
const unnamed = "unnamed"

// SanitizeFileName turns an arbitrary display name into a portable file name
// component. Accents are stripped, path separators and characters reserved
// on Windows become '_', and surrounding spaces and dots are trimmed.
func SanitizeFileName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range stripped {
		if isReserved(r) {
			if !lastUnderscore {
				b.WriteByte('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = r == '_'
	}

	out := strings.Trim(b.String(), " .")
	if out == "" || out == "_" {
		return unnamed
	}
	return out
}

func isReserved(r rune) bool {
	if unicode.IsControl(r) {
		return true
	}
	return strings.ContainsRune(`<>:"/\|?*`, r)
}
