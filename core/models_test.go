package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "huile olive 1l\x1falimentaire",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "a much longer fingerprint built from a verbose product name that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("huile olive 1l\x1falimentaire")
	id2 := IDFromContent("huile olive 1l\x1funknown")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestCanonicalProduct_EmbeddingText(t *testing.T) {
	tests := []struct {
		name    string
		product CanonicalProduct
		want    string
	}{
		{
			name: "description preferred",
			product: CanonicalProduct{
				Name:        "Huile Olive 1L",
				Description: "Huile d'olive extra vierge, bouteille 1L",
			},
			want: "Huile d'olive extra vierge, bouteille 1L",
		},
		{
			name: "name fallback",
			product: CanonicalProduct{
				Name: "Huile Olive 1L",
			},
			want: "Huile Olive 1L",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.product.EmbeddingText()
			if got != tt.want {
				t.Errorf("CanonicalProduct.EmbeddingText() = %v, want %v", got, tt.want)
			}
		})
	}
}
