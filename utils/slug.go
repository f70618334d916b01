package utils

import (
	"strings"
	"unicode"
)

// Slugify derives a URL slug from a title: lowercase, runs of
// non-alphanumeric characters collapsed to single hyphens, no leading or
// trailing hyphen. Deterministic for a given title.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
