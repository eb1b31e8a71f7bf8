package dedup

import (
	"strings"
	"unicode"

	"github.com/soukdata/souq/core"
)

// Fingerprint derives the dedup key for a normalized record: name and
// category lower-cased, stripped of punctuation and symbols, whitespace
// collapsed, joined with a unit separator. Equal fingerprints mean the same
// product. Near-duplicates that still differ after canonicalization stay
// distinct; there is no fuzzy matching.
func Fingerprint(name, category string) string {
	return canonicalize(name) + "\x1f" + canonicalize(category)
}

// ProductID derives the stable catalog ID for a name and category. Equal
// fingerprints map to equal IDs across runs and machines.
func ProductID(name, category string) core.ID {
	return core.IDFromContent(Fingerprint(name, category))
}

func canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
