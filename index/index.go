// Package index provides the in-memory vector index behind catalog search.
//
// The similarity metric is fixed: stored vectors are scored against the
// query by dot product. Encoders L2-normalize their outputs, so the dot
// product is cosine similarity. Search is brute force; at catalog scale a
// linear scan beats the bookkeeping of approximate structures.
package index

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/soukdata/souq/core"
)

// Index maps product IDs to embedding vectors and answers nearest-neighbor
// queries. The vector dimension is pinned by the first add; every later add
// and every search must match it.
//
// Index is safe for concurrent use: searches share a read lock, mutations
// are serialized.
type Index struct {
	mu      sync.RWMutex
	vectors map[core.ID][]float32
	dim     int

	logger *slog.Logger
}

// New creates an empty index.
func New() *Index {
	return &Index{
		vectors: make(map[core.ID][]float32),
		logger:  slog.Default().With("component", "index"),
	}
}

// Add inserts or overwrites the vector for a product. The first add pins the
// index dimension; a mismatched vector fails that add and leaves the index
// unchanged.
func (idx *Index) Add(id core.ID, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: product %d", ErrEmptyVector, id)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dim == 0 {
		idx.dim = len(vector)
	}
	if len(vector) != idx.dim {
		return fmt.Errorf("%w: product %d has %d, index has %d", ErrDimensionMismatch, id, len(vector), idx.dim)
	}

	idx.vectors[id] = slices.Clone(vector)
	return nil
}

// Remove deletes a product's vector. Removing an absent product is a no-op.
func (idx *Index) Remove(id core.ID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.vectors, id)
}

// Get returns a copy of the stored vector for a product.
func (idx *Index) Get(id core.ID) ([]float32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	vector, ok := idx.vectors[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(vector), true
}

// Len returns the number of indexed products.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimension returns the pinned vector dimension, or 0 before the first add.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dim
}

// Search returns up to k products by descending similarity to the query.
// Equal scores order by ascending product ID, so results are deterministic.
// An empty index or non-positive k yields an empty result, never an error.
func (idx *Index) Search(query []float32, k int) ([]core.SimilarityMatch, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 || k <= 0 {
		return []core.SimilarityMatch{}, nil
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), idx.dim)
	}

	matches := make([]core.SimilarityMatch, 0, len(idx.vectors))
	for id, vector := range idx.vectors {
		matches = append(matches, core.SimilarityMatch{
			ProductId: id,
			Score:     dot(query, vector),
		})
	}

	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.ProductId < b.ProductId {
			return -1
		}
		if a.ProductId > b.ProductId {
			return 1
		}
		return 0
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Rebuild replaces the index contents with the embeddings from the iterator.
// The swap is atomic: searches keep serving the old vectors until the new
// set is fully built, and any iteration error leaves the index untouched, so
// a failed rebuild can simply be re-run. Returns the number of vectors
// indexed.
//
// Vectors whose dimension disagrees with the first one seen are skipped with
// a warning; only that entry is lost.
func (idx *Index) Rebuild(ctx context.Context, embeddings iter.Seq2[*core.ProductEmbedding, error]) (int, error) {
	fresh := make(map[core.ID][]float32)
	dim := 0
	skipped := 0

	for emb, err := range embeddings {
		if err != nil {
			return 0, err
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if len(emb.Vector) == 0 {
			idx.logger.Warn("skipping empty embedding", "productId", emb.ProductId)
			skipped++
			continue
		}
		if dim == 0 {
			dim = len(emb.Vector)
		}
		if len(emb.Vector) != dim {
			idx.logger.Warn("skipping embedding with mismatched dimension",
				"productId", emb.ProductId, "got", len(emb.Vector), "want", dim)
			skipped++
			continue
		}
		fresh[emb.ProductId] = slices.Clone(emb.Vector)
	}

	idx.mu.Lock()
	idx.vectors = fresh
	idx.dim = dim
	idx.mu.Unlock()

	if skipped > 0 {
		idx.logger.Warn("rebuild skipped embeddings", "skipped", skipped, "indexed", len(fresh))
	}
	return len(fresh), nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
