package index

import (
	"context"
	"iter"
	"testing"

	"github.com/soukdata/souq/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddingSeq(embs []*core.ProductEmbedding, failAfter int) iter.Seq2[*core.ProductEmbedding, error] {
	return func(yield func(*core.ProductEmbedding, error) bool) {
		for i, e := range embs {
			if failAfter >= 0 && i == failAfter {
				yield(nil, assert.AnError)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func TestIndex_Add(t *testing.T) {
	t.Run("pins dimension on first add", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0, 0}))

		assert.Equal(t, 3, idx.Dimension())
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("overwrites existing vector", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0}))
		require.NoError(t, idx.Add(1, []float32{0, 1}))
		assert.Equal(t, 1, idx.Len())

		matches, err := idx.Search([]float32{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	})

	t.Run("empty vector", func(t *testing.T) {
		idx := New()
		err := idx.Add(1, nil)
		assert.ErrorIs(t, err, ErrEmptyVector)
		assert.Zero(t, idx.Len())
	})

	t.Run("dimension mismatch fails only that add", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0, 0}))

		err := idx.Add(2, []float32{1, 0})
		assert.ErrorIs(t, err, ErrDimensionMismatch)

		// the index keeps serving and accepts well-formed adds
		assert.Equal(t, 1, idx.Len())
		require.NoError(t, idx.Add(3, []float32{0, 1, 0}))
		assert.Equal(t, 2, idx.Len())
	})

	t.Run("caller cannot mutate stored vectors", func(t *testing.T) {
		idx := New()
		vec := []float32{1, 0}
		require.NoError(t, idx.Add(1, vec))
		vec[0] = 0
		vec[1] = 1

		matches, err := idx.Search([]float32{1, 0}, 1)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
	})
}

func TestIndex_Get(t *testing.T) {
	t.Run("returns stored vector", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(7, []float32{0.6, 0.8}))

		vector, ok := idx.Get(7)
		require.True(t, ok)
		assert.Equal(t, []float32{0.6, 0.8}, vector)
	})

	t.Run("absent product", func(t *testing.T) {
		idx := New()

		vector, ok := idx.Get(7)
		assert.False(t, ok)
		assert.Nil(t, vector)
	})

	t.Run("callers cannot mutate stored vector", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(7, []float32{0.6, 0.8}))

		vector, ok := idx.Get(7)
		require.True(t, ok)
		vector[0] = 99

		again, ok := idx.Get(7)
		require.True(t, ok)
		assert.Equal(t, []float32{0.6, 0.8}, again)
	})
}

func TestIndex_Remove(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Add(1, []float32{1, 0}))
	require.NoError(t, idx.Add(2, []float32{0, 1}))

	idx.Remove(1)
	assert.Equal(t, 1, idx.Len())

	matches, err := idx.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, core.ID(2), matches[0].ProductId)

	// removing an absent product is a no-op
	idx.Remove(99)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Search(t *testing.T) {
	t.Run("orders by descending score", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0, 0}))
		require.NoError(t, idx.Add(2, []float32{0.8, 0.6, 0}))
		require.NoError(t, idx.Add(3, []float32{0, 0, 1}))

		matches, err := idx.Search([]float32{1, 0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, core.ID(1), matches[0].ProductId)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
		assert.Equal(t, core.ID(2), matches[1].ProductId)
		assert.InDelta(t, 0.8, matches[1].Score, 1e-6)
		assert.Equal(t, core.ID(3), matches[2].ProductId)
	})

	t.Run("ties break by ascending product id", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(7, []float32{1, 0}))
		require.NoError(t, idx.Add(3, []float32{1, 0}))
		require.NoError(t, idx.Add(5, []float32{1, 0}))

		matches, err := idx.Search([]float32{1, 0}, 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, core.ID(3), matches[0].ProductId)
		assert.Equal(t, core.ID(5), matches[1].ProductId)
		assert.Equal(t, core.ID(7), matches[2].ProductId)
	})

	t.Run("k larger than index returns everything", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0}))

		matches, err := idx.Search([]float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("k truncates", func(t *testing.T) {
		idx := New()
		for i := 1; i <= 5; i++ {
			require.NoError(t, idx.Add(core.ID(i), []float32{float32(i) / 5, 0}))
		}

		matches, err := idx.Search([]float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, core.ID(5), matches[0].ProductId)
		assert.Equal(t, core.ID(4), matches[1].ProductId)
	})

	t.Run("empty index", func(t *testing.T) {
		idx := New()
		matches, err := idx.Search([]float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("non-positive k", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0}))

		matches, err := idx.Search([]float32{1, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{1, 0, 0}))

		_, err := idx.Search([]float32{1, 0}, 1)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("deterministic", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(1, []float32{0.6, 0.8}))
		require.NoError(t, idx.Add(2, []float32{0.8, 0.6}))
		require.NoError(t, idx.Add(3, []float32{0, 1}))

		first, err := idx.Search([]float32{1, 0}, 3)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := idx.Search([]float32{1, 0}, 3)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})
}

func TestIndex_Rebuild(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces contents", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(99, []float32{1, 0}))

		embs := []*core.ProductEmbedding{
			{ProductId: 1, ModelVersion: "v2", Vector: []float32{1, 0, 0}},
			{ProductId: 2, ModelVersion: "v2", Vector: []float32{0, 1, 0}},
		}
		added, err := idx.Rebuild(ctx, embeddingSeq(embs, -1))
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, 2, idx.Len())
		assert.Equal(t, 3, idx.Dimension(), "rebuild repins the dimension")

		matches, err := idx.Search([]float32{1, 0, 0}, 10)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, core.ID(1), matches[0].ProductId)
	})

	t.Run("error leaves old contents intact", func(t *testing.T) {
		idx := New()
		require.NoError(t, idx.Add(99, []float32{1, 0}))

		embs := []*core.ProductEmbedding{
			{ProductId: 1, Vector: []float32{1, 0, 0}},
			{ProductId: 2, Vector: []float32{0, 1, 0}},
		}
		_, err := idx.Rebuild(ctx, embeddingSeq(embs, 1))
		require.ErrorIs(t, err, assert.AnError)

		assert.Equal(t, 1, idx.Len())
		assert.Equal(t, 2, idx.Dimension())
	})

	t.Run("skips mismatched dimensions", func(t *testing.T) {
		idx := New()
		embs := []*core.ProductEmbedding{
			{ProductId: 1, Vector: []float32{1, 0, 0}},
			{ProductId: 2, Vector: []float32{1, 0}},
			{ProductId: 3, Vector: []float32{0, 0, 1}},
		}
		added, err := idx.Rebuild(ctx, embeddingSeq(embs, -1))
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, 2, idx.Len())
	})

	t.Run("rerun is idempotent", func(t *testing.T) {
		idx := New()
		embs := []*core.ProductEmbedding{
			{ProductId: 1, Vector: []float32{1, 0}},
			{ProductId: 2, Vector: []float32{0, 1}},
		}
		_, err := idx.Rebuild(ctx, embeddingSeq(embs, -1))
		require.NoError(t, err)
		added, err := idx.Rebuild(ctx, embeddingSeq(embs, -1))
		require.NoError(t, err)
		assert.Equal(t, 2, added)
		assert.Equal(t, 2, idx.Len())
	})

	t.Run("canceled context", func(t *testing.T) {
		idx := New()
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		embs := []*core.ProductEmbedding{{ProductId: 1, Vector: []float32{1, 0}}}
		_, err := idx.Rebuild(canceled, embeddingSeq(embs, -1))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
