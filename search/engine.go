package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/index"
	"github.com/soukdata/souq/storage"
)

// candidateFactor controls how many index candidates are fetched per
// requested result, so filters still have material to work with.
const candidateFactor = 4

// Encoder turns query text into a vector. *ai.Encoder satisfies it.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Filters narrows query results after similarity ranking.
type Filters struct {
	// Category keeps only products in this category. Matching is
	// case-insensitive.
	Category string

	// MinPrice and MaxPrice are inclusive bounds. A product without a
	// parsed price never passes a price filter.
	MinPrice *float64
	MaxPrice *float64
}

func (f Filters) match(product *core.CanonicalProduct) bool {
	if f.Category != "" && !strings.EqualFold(f.Category, product.Category) {
		return false
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		if product.Price == nil {
			return false
		}
		if f.MinPrice != nil && *product.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && *product.Price > *f.MaxPrice {
			return false
		}
	}
	return true
}

// Engine answers catalog queries by combining the query encoder, the vector
// index and the product repository.
type Engine struct {
	products storage.ProductRepository
	encoder  Encoder
	idx      *index.Index
	logger   *slog.Logger
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a search engine over the given repository, encoder and
// index.
func NewEngine(products storage.ProductRepository, encoder Encoder, idx *index.Index, opts ...Option) (*Engine, error) {
	if products == nil {
		return nil, ErrProductRepositoryRequired
	}
	if encoder == nil {
		return nil, ErrEncoderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	engine := &Engine{
		products: products,
		encoder:  encoder,
		idx:      idx,
		logger:   slog.Default().With("component", "search-engine"),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine, nil
}

// Query returns up to k products ranked by similarity to the query text,
// after applying the given filters. Fewer than k survivors yield fewer
// results; zero survivors yield an empty slice and no error.
func (e *Engine) Query(ctx context.Context, text string, k int, filters Filters) ([]*core.SearchResult, error) {
	return e.QueryWithMonitor(ctx, text, k, filters, nil)
}

// QueryWithMonitor is Query with hooks into each stage of the pipeline.
// A nil monitor is replaced by a no-op implementation.
func (e *Engine) QueryWithMonitor(ctx context.Context, text string, k int, filters Filters, monitor Monitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(text)

	vector, err := e.encoder.Encode(ctx, text)
	if err != nil {
		e.logger.Error("error encoding query", "query", text, "err", err)
		return nil, err
	}
	monitor.AfterEncode(vector)

	if k <= 0 {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	matches, err := e.idx.Search(vector, k*candidateFactor)
	if err != nil {
		e.logger.Error("error searching index", "query", text, "err", err)
		return nil, err
	}
	monitor.AfterIndexSearch(matches)

	results, err := e.collect(ctx, matches, k, filters)
	if err != nil {
		return nil, err
	}
	monitor.AfterFilter(results)

	e.logger.Debug("query complete", "query", text, "candidates", len(matches), "results", len(results))
	monitor.Finish(results)
	return results, nil
}

// Similar returns up to k products nearest to a stored product, excluding the
// product itself. It returns ErrNotIndexed when the product has no vector.
func (e *Engine) Similar(ctx context.Context, productId core.ID, k int) ([]*core.SearchResult, error) {
	vector, ok := e.idx.Get(productId)
	if !ok {
		return nil, fmt.Errorf("%w: product %d", ErrNotIndexed, productId)
	}

	if k <= 0 {
		return []*core.SearchResult{}, nil
	}

	// The product scores 1.0 against itself, so fetch one extra candidate.
	matches, err := e.idx.Search(vector, k*candidateFactor+1)
	if err != nil {
		e.logger.Error("error searching index", "productId", productId, "err", err)
		return nil, err
	}

	neighbors := make([]core.SimilarityMatch, 0, len(matches))
	for _, match := range matches {
		if match.ProductId == productId {
			continue
		}
		neighbors = append(neighbors, match)
	}

	return e.collect(ctx, neighbors, k, Filters{})
}

// collect hydrates index matches into ranked results, dropping matches whose
// product is missing from the repository or rejected by the filters.
func (e *Engine) collect(ctx context.Context, matches []core.SimilarityMatch, k int, filters Filters) ([]*core.SearchResult, error) {
	results := []*core.SearchResult{}
	if len(matches) == 0 {
		return results, nil
	}

	ids := make([]core.ID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.ProductId)
	}

	products, err := e.products.GetProducts(ctx, ids...)
	if err != nil {
		e.logger.Error("error retrieving products", "count", len(ids), "err", err)
		return nil, fmt.Errorf("retrieving products: %w", err)
	}

	byId := make(map[core.ID]*core.CanonicalProduct, len(products))
	for _, product := range products {
		byId[product.Id] = product
	}

	for _, match := range matches {
		product, ok := byId[match.ProductId]
		if !ok {
			e.logger.Warn("indexed product missing from store", "productId", match.ProductId)
			continue
		}
		if !filters.match(product) {
			continue
		}
		results = append(results, &core.SearchResult{
			Product: product,
			Score:   match.Score,
			Rank:    len(results) + 1,
		})
		if len(results) == k {
			break
		}
	}

	return results, nil
}
