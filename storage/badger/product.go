package badger

import (
	"context"
	"errors"
	"iter"

	"github.com/dgraph-io/badger/v4"
	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/storage"
)

// errStopIteration signals that the consumer of a sequence stopped early.
// It never escapes this package.
var errStopIteration = errors.New("stop iteration")

// ProductRepository implements storage.ProductRepository for BadgerDB.
type ProductRepository struct {
	backend *Backend
}

var _ storage.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(backend *Backend) *ProductRepository {
	return &ProductRepository{
		backend: backend,
	}
}

// Close releases repository resources. The backend is shared between
// repositories and is closed by its owner.
func (r *ProductRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ProductRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertProducts writes one or more products keyed by their content IDs.
// Existing entries are replaced whole; the write commits all-or-nothing.
func (r *ProductRepository) UpsertProducts(ctx context.Context, products ...*core.CanonicalProduct) error {
	if len(products) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, product := range products {
			key := makeProductKey(product.Id)
			value := storage.MarshalProduct(product)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetProduct retrieves a single product by ID.
func (r *ProductRepository) GetProduct(ctx context.Context, id core.ID) (*core.CanonicalProduct, error) {
	var result *core.CanonicalProduct
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProductKey(id)
		var err error
		result, err = readProduct(tx, key)
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

// GetProducts retrieves multiple products by their IDs.
// Missing products are skipped without error.
func (r *ProductRepository) GetProducts(ctx context.Context, ids ...core.ID) ([]*core.CanonicalProduct, error) {
	var result []*core.CanonicalProduct
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProductKey(id)
			product, err := readProduct(tx, key)
			if err != nil {
				return err
			}
			if product != nil {
				result = append(result, product)
			}
		}
		return nil
	}, false)
	return result, err
}

// AllProducts returns a lazy sequence over every stored product. Each range
// over the sequence opens a fresh read transaction, so an abandoned scan can
// simply be restarted by ranging again.
func (r *ProductRepository) AllProducts(ctx context.Context) iter.Seq2[*core.CanonicalProduct, error] {
	return func(yield func(*core.CanonicalProduct, error) bool) {
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(productRecordPrefix + ":")
			it := tx.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				var product *core.CanonicalProduct
				err := it.Item().Value(func(val []byte) error {
					var unmarshalErr error
					product, unmarshalErr = storage.UnmarshalProduct(val)
					return unmarshalErr
				})
				if err != nil {
					return err
				}

				if !yield(product, nil) {
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

// CountProducts returns the number of stored products.
func (r *ProductRepository) CountProducts(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productRecordPrefix + ":")
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DeleteProducts removes products by their IDs.
func (r *ProductRepository) DeleteProducts(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProductKey(id)

			product, err := readProduct(tx, key)
			if err != nil {
				return err
			}
			if product == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readProduct reads a product from the transaction.
// Returns nil, nil when the key does not exist.
func readProduct(tx *badger.Txn, key []byte) (*core.CanonicalProduct, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var product *core.CanonicalProduct
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		product, unmarshalErr = storage.UnmarshalProduct(val)
		return unmarshalErr
	})
	return product, err
}
