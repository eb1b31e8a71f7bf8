// Copyright 2025 Soukdata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/index"
	"github.com/soukdata/souq/storage"
)

// Config holds configuration for a reindexing run.
type Config struct {
	// BatchSize is the number of products to encode in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of products)
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
	}
}

// Encoder produces vectors for product text. *ai.Encoder satisfies it.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelVersion() string
}

// Result accounts for one reindexing run.
type Result struct {
	Products int // products walked
	Encoded  int // embeddings written under the new model version
	Skipped  int // products whose encoding failed after retries
	Pruned   int // stale embeddings removed from other model versions
	Indexed  int // vectors loaded into the rebuilt index
}

// Reindexer re-embeds the whole catalog under the encoder's model version,
// prunes embeddings left by older versions, and rebuilds the vector index.
type Reindexer struct {
	products   storage.ProductRepository
	embeddings storage.EmbeddingRepository
	encoder    Encoder
	idx        *index.Index
	config     *Config
	progress   io.Writer
	iterator   *ProductIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	products storage.ProductRepository,
	embeddings storage.EmbeddingRepository,
	encoder Encoder,
	idx *index.Index,
	config *Config,
	progress io.Writer,
) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		products:   products,
		embeddings: embeddings,
		encoder:    encoder,
		idx:        idx,
		config:     config,
		progress:   progress,
		iterator:   NewProductIterator(products, config.BatchSize),
	}
}

// Run executes the reindexing operation. Products whose encoding fails after
// the encoder's retries are skipped and counted; the run continues without
// them and they simply stay out of the rebuilt index.
func (r *Reindexer) Run(ctx context.Context) (*Result, error) {
	version := r.encoder.ModelVersion()
	result := &Result{}

	total, err := r.products.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No products in catalog (0 products)\n")
		return result, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d products to model %s (batch size: %d)\n",
		total, version, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(products []*core.CanonicalProduct) error {
		if err := r.processBatch(ctx, products, version, result); err != nil {
			return err
		}
		tracker.Increment(len(products))
		return nil
	})
	if err != nil {
		return nil, err
	}
	tracker.Finish()

	pruned, err := r.embeddings.PruneModelVersions(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("pruning stale embeddings: %w", err)
	}
	result.Pruned = pruned

	indexed, err := r.idx.Rebuild(ctx, r.embeddings.AllEmbeddings(ctx, version))
	if err != nil {
		return nil, fmt.Errorf("rebuilding index: %w", err)
	}
	result.Indexed = indexed

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Encoded %d/%d products, pruned %d stale embeddings, indexed %d vectors in %v (%.1f products/sec)\n",
		result.Encoded, result.Products, result.Pruned, result.Indexed,
		elapsed.Round(time.Second), float64(result.Products)/elapsed.Seconds())

	return result, nil
}

// processBatch encodes one batch and stores the vectors. A failed batch falls
// back to per-product encoding so one bad product does not drop its peers.
func (r *Reindexer) processBatch(ctx context.Context, products []*core.CanonicalProduct, version string, result *Result) error {
	result.Products += len(products)

	texts := make([]string, len(products))
	for i, product := range products {
		texts[i] = product.EmbeddingText()
	}

	embeddings := make([]*core.ProductEmbedding, 0, len(products))
	vectors, err := r.encoder.EncodeBatch(ctx, texts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		for i, product := range products {
			vector, encErr := r.encoder.Encode(ctx, texts[i])
			if encErr != nil {
				result.Skipped++
				fmt.Fprintf(r.progress, "\nSkipping product %d: %v\n", product.Id, encErr)
				continue
			}
			embeddings = append(embeddings, &core.ProductEmbedding{
				ProductId:    product.Id,
				ModelVersion: version,
				Vector:       vector,
			})
		}
	} else {
		for i, product := range products {
			embeddings = append(embeddings, &core.ProductEmbedding{
				ProductId:    product.Id,
				ModelVersion: version,
				Vector:       vectors[i],
			})
		}
	}

	if len(embeddings) == 0 {
		return nil
	}

	if err := r.embeddings.PutEmbeddings(ctx, embeddings...); err != nil {
		return fmt.Errorf("storing embeddings: %w", err)
	}
	result.Encoded += len(embeddings)

	return nil
}
