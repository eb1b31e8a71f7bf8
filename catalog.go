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


package souq

import (
	"context"
	"io"
	"log/slog"

	"github.com/soukdata/souq/ai"
	"github.com/soukdata/souq/ai/openai"
	"github.com/soukdata/souq/export"
	"github.com/soukdata/souq/index"
	"github.com/soukdata/souq/ingestion"
	"github.com/soukdata/souq/normalize"
	"github.com/soukdata/souq/reindex"
	"github.com/soukdata/souq/search"
	"github.com/soukdata/souq/storage"
	"github.com/soukdata/souq/storage/badger"
)

// Catalog is the assembled product catalog: storage, encoder and vector
// index wired together and ready to ingest, search, reindex and export.
type Catalog struct {
	backend    *badger.Backend
	products   storage.ProductRepository
	embeddings storage.EmbeddingRepository
	encoder    *ai.Encoder
	idx        *index.Index
	vocab      *normalize.Vocabulary
	logger     *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	vocab    *normalize.Vocabulary
	inMemory bool
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) CatalogOption {
	return func(o *catalogOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder injects an embedder instead of dialing the configured
// embedding service. Intended for tests.
func WithEmbedder(embedder ai.Embedder) CatalogOption {
	return func(o *catalogOptions) {
		o.embedder = embedder
	}
}

// WithVocabulary sets the category vocabulary used by ingestion pipelines
// created from this catalog.
func WithVocabulary(vocab *normalize.Vocabulary) CatalogOption {
	return func(o *catalogOptions) {
		o.vocab = vocab
	}
}

// WithInMemory keeps all state in memory; the path passed to Open is ignored.
func WithInMemory() CatalogOption {
	return func(o *catalogOptions) {
		o.inMemory = true
	}
}

// Open opens the catalog at filePath, creating it when absent. The vector
// index is rebuilt from the embeddings stored under the configured model
// version, so a restarted catalog searches exactly what it persisted.
func Open(filePath string, opts ...CatalogOption) (*Catalog, error) {
	// Apply options
	options := &catalogOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	products := badger.NewProductRepository(backend)
	embeddings := badger.NewEmbeddingRepository(backend)

	// Create the query encoder, against a real service or an injected embedder
	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	encoder, err := ai.NewEncoder(embedder, options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	logger := slog.Default().With("component", "catalog")

	// Rebuild the index from persisted embeddings
	idx := index.New()
	ctx := context.Background()
	indexed, err := idx.Rebuild(ctx, embeddings.AllEmbeddings(ctx, encoder.ModelVersion()))
	if err != nil {
		backend.Close()
		return nil, err
	}
	logger.Info("catalog open", "path", filePath, "modelVersion", encoder.ModelVersion(), "indexed", indexed)

	return &Catalog{
		backend:    backend,
		products:   products,
		embeddings: embeddings,
		encoder:    encoder,
		idx:        idx,
		vocab:      options.vocab,
		logger:     logger,
	}, nil
}

// Close releases the catalog's resources.
func (c *Catalog) Close() error {
	if err := c.products.Close(); err != nil {
		c.logger.Error("error closing product repository", "err", err)
		return err
	}
	if err := c.embeddings.Close(); err != nil {
		c.logger.Error("error closing embedding repository", "err", err)
		return err
	}

	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Products returns the canonical product repository.
func (c *Catalog) Products() storage.ProductRepository {
	return c.products
}

// Embeddings returns the embedding repository.
func (c *Catalog) Embeddings() storage.EmbeddingRepository {
	return c.embeddings
}

// ModelVersion returns the model version new embeddings are stored under.
func (c *Catalog) ModelVersion() string {
	return c.encoder.ModelVersion()
}

// Pipeline creates an ingestion pipeline over this catalog.
func (c *Catalog) Pipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	if c.vocab != nil {
		opts = append([]ingestion.Option{ingestion.WithVocabulary(c.vocab)}, opts...)
	}
	return ingestion.NewPipeline(c.products, c.embeddings, c.encoder, c.idx, opts...)
}

// Searcher creates a search engine over this catalog.
func (c *Catalog) Searcher(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(c.products, c.encoder, c.idx, opts...)
}

// Reindexer creates a reindexer that re-embeds the catalog under the current
// model version, writing progress to w.
func (c *Catalog) Reindexer(config *reindex.Config, w io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(c.products, c.embeddings, c.encoder, c.idx, config, w)
}

// ExportCSV streams the whole catalog to w as CSV and returns the number of
// products written.
func (c *Catalog) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	return export.CatalogCSV(ctx, c.products, w)
}
