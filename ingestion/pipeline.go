package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/dedup"
	"github.com/soukdata/souq/index"
	"github.com/soukdata/souq/normalize"
	"github.com/soukdata/souq/storage"
)

// Encoder produces vectors for product text. *ai.Encoder satisfies it.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	ModelVersion() string
}

// Pipeline orchestrates one ingestion run over a batch of scraped records:
// normalize, deduplicate, persist, embed, index. The normalize and encode
// stages run across worker pools; everything between them is single-threaded.
type Pipeline struct {
	products      storage.ProductRepository
	embeddings    storage.EmbeddingRepository
	encoder       Encoder
	idx           *index.Index
	normalizer    *normalize.Normalizer
	deduplicator  *dedup.Deduplicator
	normalizePool *ants.Pool
	encodePool    *ants.Pool
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for the parallel stages.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.normalizePool != nil {
			p.normalizePool.Release()
		}
		if p.encodePool != nil {
			p.encodePool.Release()
		}

		normalizePool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		encodePool, err := ants.NewPool(size)
		if err != nil {
			normalizePool.Release()
			return err
		}

		p.normalizePool = normalizePool
		p.encodePool = encodePool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithNormalizer replaces the default normalizer.
func WithNormalizer(normalizer *normalize.Normalizer) Option {
	return func(p *Pipeline) error {
		if normalizer != nil {
			p.normalizer = normalizer
		}
		return nil
	}
}

// WithVocabulary replaces the category vocabulary of the default normalizer.
func WithVocabulary(vocab *normalize.Vocabulary) Option {
	return func(p *Pipeline) error {
		if vocab != nil {
			p.normalizer = normalize.New(normalize.WithVocabulary(vocab))
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	products storage.ProductRepository,
	embeddings storage.EmbeddingRepository,
	encoder Encoder,
	idx *index.Index,
	opts ...Option,
) (*Pipeline, error) {
	if products == nil {
		return nil, ErrProductRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if encoder == nil {
		return nil, ErrEncoderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	normalizePool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	encodePool, err := ants.NewPool(poolSize)
	if err != nil {
		normalizePool.Release()
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		products:      products,
		embeddings:    embeddings,
		encoder:       encoder,
		idx:           idx,
		normalizer:    normalize.New(),
		deduplicator:  dedup.New(),
		normalizePool: normalizePool,
		encodePool:    encodePool,
		logger:        slog.Default().With("component", "ingestion"),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run ingests one batch of raw records and returns an accounting of what
// happened to every one of them. Invalid records are dropped and counted;
// products whose embedding fails after retries stay in the catalog but are
// skipped from the index. Run returns an error only when storage breaks or
// the context is canceled, and the summary is valid either way.
func (p *Pipeline) Run(ctx context.Context, records []core.RawRecord) (*RunSummary, error) {
	summary := newRunSummary(len(records))
	p.logger.Info("starting ingestion run", "runId", summary.RunID, "records", len(records))

	normalized := p.normalizeAll(records, summary)
	if err := ctx.Err(); err != nil {
		summary.finish()
		return summary, err
	}

	products := p.deduplicator.Merge(normalized)
	summary.Deduplicated = len(products)

	if len(products) > 0 {
		if err := p.products.UpsertProducts(ctx, products...); err != nil {
			summary.finish()
			return summary, fmt.Errorf("upserting products: %w", err)
		}
	}
	summary.Upserted = len(products)

	p.encodeAll(ctx, products, summary)
	summary.finish()
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	summary.Log(p.logger)
	return summary, nil
}

// normalizeAll cleans records across the worker pool. Worker i writes only
// slot i, so the stage needs no locking.
func (p *Pipeline) normalizeAll(records []core.RawRecord, summary *RunSummary) []core.NormalizedRecord {
	results := make([]core.NormalizedRecord, len(records))
	kept := make([]bool, len(records))
	var rejected atomic.Int64

	var wg sync.WaitGroup
	for i := range records {
		raw := records[i]
		slot := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			record, err := p.normalizer.Normalize(raw)
			if err != nil {
				rejected.Add(1)
				p.logger.Warn("dropping invalid record", "sourceUrl", raw.SourceURL, "err", err)
				return
			}
			results[slot] = record
			kept[slot] = true
		}
		if err := p.normalizePool.Submit(task); err != nil {
			// pool unavailable; run inline so the batch still completes
			task()
		}
	}
	wg.Wait()

	normalized := make([]core.NormalizedRecord, 0, len(records))
	for i, ok := range kept {
		if ok {
			normalized = append(normalized, results[i])
		}
	}
	summary.Rejected = int(rejected.Load())
	return normalized
}

// encodeAll embeds and indexes products across the worker pool. Each product
// is owned by exactly one worker, so storage and index writes never contend
// on the same key.
func (p *Pipeline) encodeAll(ctx context.Context, products []*core.CanonicalProduct, summary *RunSummary) {
	var encoded, skipped, indexFailed atomic.Int64

	var wg sync.WaitGroup
	for _, product := range products {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			p.encodeOne(ctx, product, &encoded, &skipped, &indexFailed)
		}
		if err := p.encodePool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	summary.Encoded = int(encoded.Load())
	summary.Skipped = int(skipped.Load())
	summary.IndexFailed = int(indexFailed.Load())
}

func (p *Pipeline) encodeOne(ctx context.Context, product *core.CanonicalProduct, encoded, skipped, indexFailed *atomic.Int64) {
	vector, err := p.encoder.Encode(ctx, product.EmbeddingText())
	if err != nil {
		// the product stays in the catalog; it just cannot be searched
		skipped.Add(1)
		p.logger.Warn("skipping product from index", "productId", product.Id, "err", err)
		return
	}

	embedding := &core.ProductEmbedding{
		ProductId:    product.Id,
		ModelVersion: p.encoder.ModelVersion(),
		Vector:       vector,
	}
	if err := p.embeddings.PutEmbeddings(ctx, embedding); err != nil {
		skipped.Add(1)
		p.logger.Error("error storing embedding", "productId", product.Id, "err", err)
		return
	}

	if err := p.idx.Add(product.Id, vector); err != nil {
		indexFailed.Add(1)
		p.logger.Error("error indexing product", "productId", product.Id, "err", err)
		return
	}
	encoded.Add(1)
}

// Release releases the worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.normalizePool != nil {
		p.normalizePool.Release()
	}
	if p.encodePool != nil {
		p.encodePool.Release()
	}
}
