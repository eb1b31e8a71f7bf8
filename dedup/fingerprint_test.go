package dedup

import (
	"testing"

	"github.com/soukdata/souq/core"
	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	base := Fingerprint("Huile Olive 1L", "alimentaire")

	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, base, Fingerprint("Huile Olive 1L", "alimentaire"))
	})

	equal := []struct {
		name     string
		variant  string
		category string
	}{
		{"case folded", "HUILE OLIVE 1L", "alimentaire"},
		{"whitespace collapsed", "Huile   Olive \t 1L", "alimentaire"},
		{"padded", "  Huile Olive 1L  ", "alimentaire"},
		{"punctuation stripped", "Huile, Olive. 1L!", "alimentaire"},
	}
	for _, tt := range equal {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, base, Fingerprint(tt.variant, tt.category))
		})
	}

	distinct := []struct {
		name     string
		variant  string
		category string
	}{
		{"different name", "Huile Tournesol 1L", "alimentaire"},
		{"different size", "Huile Olive 5L", "alimentaire"},
		{"different category", "Huile Olive 1L", "unknown"},
	}
	for _, tt := range distinct {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, Fingerprint(tt.variant, tt.category))
		})
	}

	t.Run("apostrophe joins words", func(t *testing.T) {
		assert.Equal(t,
			Fingerprint("Huile d'Olive", "alimentaire"),
			Fingerprint("Huile dOlive", "alimentaire"))
	})

	t.Run("separator keeps name and category apart", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint("huile olive", "x"), Fingerprint("huile", "olive x"))
	})
}

func TestProductID(t *testing.T) {
	// the ID is the content hash of the fingerprint, nothing else
	want := core.IDFromContent("huile olive 1l\x1falimentaire")
	assert.Equal(t, want, ProductID("Huile Olive 1L", "Alimentaire"))
	assert.Equal(t, ProductID("HUILE  OLIVE 1L", "alimentaire"), ProductID("huile olive 1l", "alimentaire"))
}
