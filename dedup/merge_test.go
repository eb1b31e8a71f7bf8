package dedup

import (
	"testing"
	"time"

	"github.com/soukdata/souq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day1 = time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)
	day2 = time.Date(2025, 11, 14, 8, 0, 0, 0, time.UTC)
)

func ptr(v float64) *float64 { return &v }

func testRecord(sourceURL, name string) core.NormalizedRecord {
	return core.NormalizedRecord{
		Name:      name,
		Category:  "alimentaire",
		SourceURL: sourceURL,
		ScrapedAt: day1,
	}
}

func TestMergeCluster_NameLongestWins(t *testing.T) {
	short := testRecord("https://a.example.ma/p", "Huile Olive")
	long := testRecord("https://b.example.ma/p", "Huile Olive Extra Vierge 1L")

	product := mergeCluster("fp", []core.NormalizedRecord{short, long})
	assert.Equal(t, "Huile Olive Extra Vierge 1L", product.Name)
	assert.Equal(t, "https://b.example.ma/p", product.Provenance.Name)
}

func TestMergeCluster_NameTieKeepsFirstSourceURL(t *testing.T) {
	a := testRecord("https://a.example.ma/p", "HUILE OLIVE")
	b := testRecord("https://b.example.ma/p", "Huile Olive")

	// same rune count; lexically earlier source URL wins, in either input order
	for _, records := range [][]core.NormalizedRecord{{a, b}, {b, a}} {
		product := mergeCluster("fp", records)
		assert.Equal(t, "HUILE OLIVE", product.Name)
		assert.Equal(t, "https://a.example.ma/p", product.Provenance.Name)
	}
}

func TestMergeCluster_PriceMostRecentScrape(t *testing.T) {
	older := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	older.Price = ptr(45.0)

	newer := testRecord("https://b.example.ma/p", "Huile Olive 1L")
	newer.Price = ptr(47.0)
	newer.ScrapedAt = day2

	product := mergeCluster("fp", []core.NormalizedRecord{newer, older})
	require.NotNil(t, product.Price)
	assert.Equal(t, 47.0, *product.Price)
	assert.Equal(t, "https://b.example.ma/p", product.Provenance.Price)
}

func TestMergeCluster_PriceSkipsNil(t *testing.T) {
	priced := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	priced.Price = ptr(45.0)

	// more recent but the price text never parsed
	unpriced := testRecord("https://b.example.ma/p", "Huile Olive 1L")
	unpriced.ScrapedAt = day2

	product := mergeCluster("fp", []core.NormalizedRecord{priced, unpriced})
	require.NotNil(t, product.Price)
	assert.Equal(t, 45.0, *product.Price)
}

func TestMergeCluster_PriceAllNil(t *testing.T) {
	a := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	b := testRecord("https://b.example.ma/p", "Huile Olive 1L")

	product := mergeCluster("fp", []core.NormalizedRecord{a, b})
	assert.Nil(t, product.Price)
	assert.Nil(t, product.ReducedPrice)
	assert.Empty(t, product.Provenance.Price)
}

func TestMergeCluster_ReducedPriceFollowsPriceWinner(t *testing.T) {
	older := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	older.Price = ptr(60.0)
	older.ReducedPrice = ptr(45.0)
	older.Promo = true

	newer := testRecord("https://b.example.ma/p", "Huile Olive 1L")
	newer.Price = ptr(47.0)
	newer.ScrapedAt = day2

	product := mergeCluster("fp", []core.NormalizedRecord{older, newer})
	require.NotNil(t, product.Price)
	assert.Equal(t, 47.0, *product.Price)
	// the older promo pair must not leak its reduced price into the winner
	assert.Nil(t, product.ReducedPrice)
	assert.True(t, product.Promo, "promo sticks if any candidate saw one")
}

func TestMergeCluster_CategoryFirstKnown(t *testing.T) {
	unknown := testRecord("https://a.example.ma/p", "Produit")
	unknown.Category = core.CategoryUnknown

	known := testRecord("https://b.example.ma/p", "Produit")
	known.Category = "alimentaire"

	product := mergeCluster("fp", []core.NormalizedRecord{unknown, known})
	assert.Equal(t, "alimentaire", product.Category)
	assert.Equal(t, "https://b.example.ma/p", product.Provenance.Category)
}

func TestMergeCluster_CategoryAllUnknown(t *testing.T) {
	a := testRecord("https://a.example.ma/p", "Produit")
	a.Category = core.CategoryUnknown

	product := mergeCluster("fp", []core.NormalizedRecord{a})
	assert.Equal(t, core.CategoryUnknown, product.Category)
	assert.Empty(t, product.Provenance.Category)
}

func TestMergeCluster_FirstNonEmptyFields(t *testing.T) {
	bare := testRecord("https://a.example.ma/p", "Huile Olive 1L")

	rich := testRecord("https://b.example.ma/p", "Huile Olive 1L")
	rich.ImageURL = "https://cdn.example.ma/huile.jpg"
	rich.Brand = "MARQUE"
	rich.PackSize = "1L"
	rich.Description = "Huile d'olive extra vierge"

	product := mergeCluster("fp", []core.NormalizedRecord{rich, bare})
	assert.Equal(t, "https://cdn.example.ma/huile.jpg", product.ImageURL)
	assert.Equal(t, "https://b.example.ma/p", product.Provenance.ImageURL)
	assert.Equal(t, "MARQUE", product.Brand)
	assert.Equal(t, "1L", product.PackSize)
	assert.Equal(t, "Huile d'olive extra vierge", product.Description)
	assert.Equal(t, "https://b.example.ma/p", product.Provenance.Description)
}

func TestMergeCluster_MergedFromSortedUnique(t *testing.T) {
	r1 := testRecord("https://b.example.ma/p", "Huile Olive 1L")
	r2 := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	r3 := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	r3.ScrapedAt = day2

	product := mergeCluster("fp", []core.NormalizedRecord{r1, r2, r3})
	assert.Equal(t, []string{"https://a.example.ma/p", "https://b.example.ma/p"}, product.MergedFrom)
}

func TestMergeCluster_OwnsPriceValues(t *testing.T) {
	r := testRecord("https://a.example.ma/p", "Huile Olive 1L")
	r.Price = ptr(45.0)

	product := mergeCluster("fp", []core.NormalizedRecord{r})
	*r.Price = 99.0
	assert.Equal(t, 45.0, *product.Price)
}
