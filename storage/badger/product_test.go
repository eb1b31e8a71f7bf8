package badger

import (
	"context"
	"testing"

	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(name, category string, price *float64, sources ...string) *core.CanonicalProduct {
	provenance := core.FieldProvenance{}
	if len(sources) > 0 {
		provenance.Name = sources[0]
		provenance.Category = sources[0]
		if price != nil {
			provenance.Price = sources[0]
		}
	}
	return &core.CanonicalProduct{
		Id:         core.IDFromContent(name + "\x1f" + category),
		Name:       name,
		Price:      price,
		Category:   category,
		MergedFrom: sources,
		Provenance: provenance,
	}
}

func TestProductRepository_UpsertAndGet(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		products.Close()
		backend.Close()
	}()

	ctx := context.Background()
	price := 47.0
	product := testProduct("Huile Olive 1L", "alimentaire", &price, "https://example.com/p/1")

	err = products.UpsertProducts(ctx, product)
	require.NoError(t, err)

	got, err := products.GetProduct(ctx, product.Id)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Round trip must be exact: the repository stores values whole and never
	// decorates them.
	assert.Equal(t, product, got)
}

func TestProductRepository_GetMissing(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		products.Close()
		backend.Close()
	}()

	ctx := context.Background()

	_, err = products.GetProduct(ctx, core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProductRepository_UpsertReplacesWhole(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		products.Close()
		backend.Close()
	}()

	ctx := context.Background()
	oldPrice := 45.0
	newPrice := 47.0

	first := testProduct("Huile Olive 1L", "alimentaire", &oldPrice, "https://example.com/p/1")
	first.Description = "ancienne description"
	require.NoError(t, products.UpsertProducts(ctx, first))

	second := testProduct("Huile Olive 1L", "alimentaire", &newPrice,
		"https://example.com/p/1", "https://example.com/p/2")
	require.NoError(t, products.UpsertProducts(ctx, second))

	got, err := products.GetProduct(ctx, first.Id)
	require.NoError(t, err)

	assert.Equal(t, second, got)
	assert.Empty(t, got.Description) // old value must not leak through

	count, err := products.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProductRepository_GetProducts_SkipsMissing(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		products.Close()
		backend.Close()
	}()

	ctx := context.Background()
	a := testProduct("Savon Noir 250g", "hygiene-beaute", nil, "https://example.com/p/3")
	b := testProduct("Tajine 30cm", "maison", nil, "https://example.com/p/4")
	require.NoError(t, products.UpsertProducts(ctx, a, b))

	got, err := products.GetProducts(ctx, a.Id, core.ID(999), b.Id)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestProductRepository_AllProducts(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		products.Close()
		backend.Close()
	}()

	ctx := context.Background()
	names := []string{"Huile Olive 1L", "Savon Noir 250g", "Tajine 30cm"}
	for _, name := range names {
		require.NoError(t, products.UpsertProducts(ctx,
			testProduct(name, "alimentaire", nil, "https://example.com/"+name)))
	}

	t.Run("full scan", func(t *testing.T) {
		var seen []string
		for product, err := range products.AllProducts(ctx) {
			require.NoError(t, err)
			seen = append(seen, product.Name)
		}
		assert.ElementsMatch(t, names, seen)
	})

	t.Run("early stop and restart", func(t *testing.T) {
		count := 0
		for _, err := range products.AllProducts(ctx) {
			require.NoError(t, err)
			count++
			if count == 1 {
				break
			}
		}
		assert.Equal(t, 1, count)

		// A fresh range starts over from the beginning.
		count = 0
		for _, err := range products.AllProducts(ctx) {
			require.NoError(t, err)
			count++
		}
		assert.Equal(t, len(names), count)
	})

	t.Run("stable order across scans", func(t *testing.T) {
		var first, second []core.ID
		for product, err := range products.AllProducts(ctx) {
			require.NoError(t, err)
			first = append(first, product.Id)
		}
		for product, err := range products.AllProducts(ctx) {
			require.NoError(t, err)
			second = append(second, product.Id)
		}
		assert.Equal(t, first, second)
	})
}

func TestProductRepository_DeleteProducts(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		products.Close()
		backend.Close()
	}()

	ctx := context.Background()
	product := testProduct("Huile Olive 1L", "alimentaire", nil, "https://example.com/p/1")
	require.NoError(t, products.UpsertProducts(ctx, product))

	require.NoError(t, products.DeleteProducts(ctx, product.Id))

	_, err = products.GetProduct(ctx, product.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = products.DeleteProducts(ctx, product.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProductRepository_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	price := 47.0
	product := testProduct("Huile Olive 1L", "alimentaire", &price, "https://example.com/p/1")

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	repo := NewProductRepository(backend)
	require.NoError(t, repo.UpsertProducts(ctx, product))
	require.NoError(t, repo.Close())
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo = NewProductRepository(backend)

	got, err := repo.GetProduct(ctx, product.Id)
	require.NoError(t, err)
	assert.Equal(t, product, got)
}
