package storage

import (
	"context"
	"iter"

	"github.com/soukdata/souq/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ProductRepository provides operations for managing canonical products.
type ProductRepository interface {
	Repository
	// UpsertProducts writes one or more products keyed by their content IDs.
	// Existing products are replaced whole; the write is all-or-nothing.
	UpsertProducts(ctx context.Context, products ...*core.CanonicalProduct) error

	// GetProduct retrieves a single product by ID.
	// Returns ErrNotFound if the product doesn't exist.
	GetProduct(ctx context.Context, id core.ID) (*core.CanonicalProduct, error)

	// GetProducts retrieves multiple products by their IDs.
	// Returns only the products that exist (no error for missing products).
	GetProducts(ctx context.Context, ids ...core.ID) ([]*core.CanonicalProduct, error)

	// AllProducts returns a lazy sequence over every stored product.
	// Each range over the sequence opens a fresh read transaction, so the
	// scan is restartable. Iteration order is key order and stable for an
	// unchanged store.
	AllProducts(ctx context.Context) iter.Seq2[*core.CanonicalProduct, error]

	// CountProducts returns the number of stored products.
	CountProducts(ctx context.Context) (int, error)

	// DeleteProducts removes products by their IDs.
	// Returns ErrNotFound if any product doesn't exist.
	DeleteProducts(ctx context.Context, ids ...core.ID) error
}

// EmbeddingRepository provides operations for managing product embeddings.
// Embeddings are keyed by (product ID, model version); vectors from different
// model versions never overwrite each other.
type EmbeddingRepository interface {
	Repository
	// PutEmbeddings writes one or more embeddings, replacing any existing
	// vector for the same (product ID, model version) pair.
	PutEmbeddings(ctx context.Context, embeddings ...*core.ProductEmbedding) error

	// GetEmbedding retrieves the embedding for a product under a model version.
	// Returns ErrNotFound if no such embedding exists.
	GetEmbedding(ctx context.Context, id core.ID, modelVersion string) (*core.ProductEmbedding, error)

	// AllEmbeddings returns a lazy, restartable sequence over every embedding
	// stored under the given model version.
	AllEmbeddings(ctx context.Context, modelVersion string) iter.Seq2[*core.ProductEmbedding, error]

	// DeleteEmbeddings removes the embeddings for the given product IDs under
	// a model version. Missing embeddings are not an error.
	DeleteEmbeddings(ctx context.Context, modelVersion string, ids ...core.ID) error

	// PruneModelVersions deletes every embedding whose model version differs
	// from keep. Returns the number of embeddings removed.
	PruneModelVersions(ctx context.Context, keep string) (int, error)
}
