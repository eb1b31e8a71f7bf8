// Package dedup folds normalized records that describe the same product into
// canonical catalog entries.
//
// Identity is exact-match on a canonicalized (name, category) fingerprint.
// Merging is deterministic: candidates are ordered by (SourceURL, ScrapedAt)
// before any per-field policy runs, so the same input set produces the same
// products and the same IDs regardless of arrival order.
package dedup

import (
	"slices"

	"github.com/soukdata/souq/core"
)

// Deduplicator groups normalized records by fingerprint and merges each
// group into a single canonical product.
type Deduplicator struct{}

// New creates a Deduplicator.
func New() *Deduplicator {
	return &Deduplicator{}
}

// Merge deduplicates records into canonical products, sorted by product ID.
// Running it again over the same records is a no-op: output products carry
// content-derived IDs, so a repeat merge upserts identical values.
func (d *Deduplicator) Merge(records []core.NormalizedRecord) []*core.CanonicalProduct {
	clusters := make(map[string][]core.NormalizedRecord)
	for _, r := range records {
		fp := Fingerprint(r.Name, r.Category)
		clusters[fp] = append(clusters[fp], r)
	}

	products := make([]*core.CanonicalProduct, 0, len(clusters))
	for fp, candidates := range clusters {
		products = append(products, mergeCluster(fp, candidates))
	}

	slices.SortFunc(products, func(a, b *core.CanonicalProduct) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return products
}
