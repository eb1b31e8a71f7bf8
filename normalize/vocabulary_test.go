package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soukdata/souq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabulary_Categorize(t *testing.T) {
	vocab := DefaultVocabulary()

	tests := []struct {
		name        string
		rawCategory string
		productName string
		want        string
	}{
		{
			name:        "exact label match",
			rawCategory: "Électronique",
			productName: "Téléviseur 42 pouces",
			want:        "electronique",
		},
		{
			name:        "case insensitive label",
			rawCategory: "ALIMENTAIRE",
			productName: "Produit",
			want:        "alimentaire",
		},
		{
			name:        "accented label",
			rawCategory: "Hygiène & Beauté",
			productName: "Produit",
			want:        "hygiene-beaute",
		},
		{
			name:        "keyword in category text",
			rawCategory: "Rayon savon et douche",
			productName: "Produit",
			want:        "hygiene-beaute",
		},
		{
			name:        "keyword fallback to product name",
			rawCategory: "",
			productName: "Huile d'olive extra vierge",
			want:        "alimentaire",
		},
		{
			name:        "category text wins over name",
			rawCategory: "Maison & Nettoyage",
			productName: "Savon de Marseille pour lessive",
			want:        "maison-nettoyage",
		},
		{
			name:        "nothing matches",
			rawCategory: "Divers",
			productName: "Produit mystère",
			want:        core.CategoryUnknown,
		},
		{
			name:        "empty everything",
			rawCategory: "",
			productName: "",
			want:        core.CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vocab.Categorize(tt.rawCategory, tt.productName)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVocabulary_Deterministic(t *testing.T) {
	vocab := DefaultVocabulary()

	// "mug" is a sport-supporters keyword and "chocolat" an alimentaire one;
	// vocabulary order decides, and it must decide the same way every time.
	first := vocab.Categorize("", "Mug chocolat chaud")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, vocab.Categorize("", "Mug chocolat chaud"))
	}
	assert.Equal(t, "alimentaire", first)
}

func TestNewVocabulary_Validation(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := NewVocabulary(nil)
		assert.ErrorIs(t, err, ErrNoCategories)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := NewVocabulary([]Category{{Name: "  "}})
		assert.ErrorIs(t, err, ErrCategoryNameRequired)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := NewVocabulary([]Category{
			{Name: "alimentaire"},
			{Name: "Alimentaire"},
		})
		assert.ErrorIs(t, err, ErrDuplicateCategory)
	})
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "vocab.yaml")
		content := `categories:
  - name: epicerie
    labels: ["Épicerie"]
    keywords: ["couscous", "semoule"]
  - name: boissons
    keywords: ["jus", "soda"]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		vocab, err := LoadVocabulary(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"epicerie", "boissons"}, vocab.Names())
		assert.Equal(t, "epicerie", vocab.Categorize("Épicerie", ""))
		assert.Equal(t, "boissons", vocab.Categorize("", "Jus d'orange 1L"))
		assert.Equal(t, core.CategoryUnknown, vocab.Categorize("Autre", "Produit"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadVocabulary(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("categories: ["), 0644))

		_, err := LoadVocabulary(path)
		assert.Error(t, err)
	})

	t.Run("no categories", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("categories: []"), 0644))

		_, err := LoadVocabulary(path)
		assert.ErrorIs(t, err, ErrNoCategories)
	})
}
