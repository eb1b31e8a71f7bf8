package storage

import (
	"testing"

	"github.com/soukdata/souq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("huile olive 1l\x1falimentaire")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalProduct(t *testing.T) {
	price := 47.0
	reduced := 39.9

	tests := []struct {
		name    string
		product *core.CanonicalProduct
	}{
		{
			name: "minimal product",
			product: &core.CanonicalProduct{
				Id:         core.ID(1),
				Name:       "Huile Olive 1L",
				Category:   core.CategoryUnknown,
				MergedFrom: []string{"https://example.com/p/1"},
			},
		},
		{
			name: "product with every field",
			product: &core.CanonicalProduct{
				Id:           core.IDFromContent("huile olive 1l\x1falimentaire"),
				Name:         "Huile Olive Extra Vierge 1L - MARQUE",
				Price:        &price,
				Category:     "alimentaire",
				Description:  "Huile d'olive extra vierge première pression à froid",
				ImageURL:     "https://example.com/img/huile.jpg",
				Brand:        "MARQUE",
				PackSize:     "1 l",
				Promo:        true,
				ReducedPrice: &reduced,
				MergedFrom: []string{
					"https://example.com/p/1",
					"https://example.com/p/2",
				},
				Provenance: core.FieldProvenance{
					Name:        "https://example.com/p/2",
					Price:       "https://example.com/p/1",
					Category:    "https://example.com/p/1",
					Description: "https://example.com/p/2",
					ImageURL:    "https://example.com/p/1",
				},
			},
		},
		{
			name: "unicode name",
			product: &core.CanonicalProduct{
				Id:         core.ID(6),
				Name:       "Thé vert à la menthe – 500g \U0001f33f",
				Category:   "alimentaire",
				MergedFrom: []string{"https://example.com/p/6"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalProduct(tt.product)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalProduct(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.product, decoded)
		})
	}
}

func TestUnmarshalProduct_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalProduct(tt.data)
			assert.Error(t, err)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalEmbedding(t *testing.T) {
	tests := []struct {
		name      string
		embedding *core.ProductEmbedding
	}{
		{
			name: "small vector",
			embedding: &core.ProductEmbedding{
				ProductId:    core.ID(1),
				ModelVersion: "nomic-embed-text-v1",
				Vector:       []float32{0.1, 0.2, 0.3, 0.4},
			},
		},
		{
			name: "typical embedding size",
			embedding: &core.ProductEmbedding{
				ProductId:    core.IDFromContent("the vert menthe 500g\x1falimentaire"),
				ModelVersion: "nomic-embed-text-v2",
				Vector:       make([]float32, 768),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEmbedding(tt.embedding)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalEmbedding(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.embedding.ProductId, decoded.ProductId)
			assert.Equal(t, tt.embedding.ModelVersion, decoded.ModelVersion)
			assert.Equal(t, tt.embedding.Vector, decoded.Vector)
		})
	}
}

func TestUnmarshalEmbedding_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEmbedding(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		price := 45.5
		original := &core.CanonicalProduct{
			Id:         core.ID(999),
			Name:       "Savon Noir 250g",
			Price:      &price,
			Category:   "hygiene-beaute",
			MergedFrom: []string{"https://example.com/p/9"},
			Provenance: core.FieldProvenance{
				Name:  "https://example.com/p/9",
				Price: "https://example.com/p/9",
			},
		}

		current := original
		for i := 0; i < 3; i++ {
			data := MarshalProduct(current)
			decoded, err := UnmarshalProduct(data)
			require.NoError(t, err)
			current = decoded
		}

		assert.Equal(t, original, current)
	})
}
