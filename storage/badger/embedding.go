package badger

import (
	"context"
	"errors"
	"iter"

	"github.com/dgraph-io/badger/v4"
	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
// Vectors are keyed by (model version, product ID) so embeddings produced by
// different model versions coexist until pruned.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{
		backend: backend,
	}
}

// Close releases repository resources. The backend is shared between
// repositories and is closed by its owner.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutEmbeddings writes one or more embeddings, replacing any existing vector
// stored under the same (product ID, model version) pair.
func (r *EmbeddingRepository) PutEmbeddings(ctx context.Context, embeddings ...*core.ProductEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, embedding := range embeddings {
			key := makeEmbeddingKey(embedding.ModelVersion, embedding.ProductId)
			value := storage.MarshalEmbedding(embedding)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves the embedding for a product under a model version.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, id core.ID, modelVersion string) (*core.ProductEmbedding, error) {
	var result *core.ProductEmbedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEmbeddingKey(modelVersion, id)
		var err error
		result, err = readEmbedding(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// AllEmbeddings returns a lazy, restartable sequence over every embedding
// stored under the given model version, in ascending product ID order.
func (r *EmbeddingRepository) AllEmbeddings(ctx context.Context, modelVersion string) iter.Seq2[*core.ProductEmbedding, error] {
	return func(yield func(*core.ProductEmbedding, error) bool) {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makePartialEmbeddingKey(modelVersion)
			it := tx.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				var embedding *core.ProductEmbedding
				err := it.Item().Value(func(val []byte) error {
					var unmarshalErr error
					embedding, unmarshalErr = storage.UnmarshalEmbedding(val)
					return unmarshalErr
				})
				if err != nil {
					return err
				}

				if !yield(embedding, nil) {
					return errStopIteration
				}
			}
			return nil
		}, false)

		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, err)
		}
	}
}

// DeleteEmbeddings removes the embeddings for the given product IDs under a
// model version. Missing embeddings are not an error: removal is idempotent
// so rebuilds can retry blindly.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, modelVersion string, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEmbeddingKey(modelVersion, id)
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// PruneModelVersions deletes every embedding whose model version differs from
// keep. Returns the number of embeddings removed.
func (r *EmbeddingRepository) PruneModelVersions(ctx context.Context, keep string) (int, error) {
	var stale [][]byte

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingRecordPrefix + ":")
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			modelVersion, _, ok := parseEmbeddingKey(key)
			if !ok {
				continue
			}
			if modelVersion != keep {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(stale), nil
}

// readEmbedding reads an embedding from the transaction.
// Returns nil, nil when the key does not exist.
func readEmbedding(tx *badger.Txn, key []byte) (*core.ProductEmbedding, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var embedding *core.ProductEmbedding
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		embedding, unmarshalErr = storage.UnmarshalEmbedding(val)
		return unmarshalErr
	})
	return embedding, err
}
