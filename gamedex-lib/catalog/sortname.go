package catalog

import (
	"strings"
	"unicode"
)

// strippedPunct is the punctuation removed entirely from sort names.
// Underscore is deliberately absent so the operation is idempotent.
const strippedPunct = "$&+,:;=?@#|'<>.-^*()%![]\"`"

// SortName derives the canonical lookup key for a display name: lowercase,
// each whitespace run collapsed to a single underscore, punctuation from
// strippedPunct removed. Pure and total; the same function runs at record
// creation and at lookup time, which is what makes the sort-name unique
// index meaningful.
func SortName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	// Whitespace runs collapse before punctuation is stripped, so a
	// punctuation character between two runs yields two underscores.
	inSpace := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case strings.ContainsRune(strippedPunct, r):
			if inSpace {
				b.WriteByte('_')
				inSpace = false
			}
		default:
			if inSpace {
				b.WriteByte('_')
				inSpace = false
			}
			b.WriteRune(r)
		}
	}
	if inSpace {
		b.WriteByte('_')
	}

	return b.String()
}
