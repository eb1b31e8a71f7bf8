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

	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/storage"
)

const (
	// DefaultBatchSize is the default number of products per batch
	DefaultBatchSize = 100
)

// ProductIterator walks every stored product in batches, streaming from the
// repository scan instead of loading the whole catalog into memory.
type ProductIterator struct {
	repo      storage.ProductRepository
	batchSize int
}

// NewProductIterator creates a product iterator.
// batchSize: number of products per batch (must be > 0)
func NewProductIterator(repo storage.ProductRepository, batchSize int) *ProductIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ProductIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of products. Iteration stops on the first
// error from fn or from the underlying scan. Context cancellation is checked
// between batches.
func (it *ProductIterator) ForEach(ctx context.Context, fn func([]*core.CanonicalProduct) error) error {
	batch := make([]*core.CanonicalProduct, 0, it.batchSize)

	for product, err := range it.repo.AllProducts(ctx) {
		if err != nil {
			return err
		}

		batch = append(batch, product)
		if len(batch) < it.batchSize {
			continue
		}

		if err := fn(batch); err != nil {
			return err
		}
		// fn may retain the slice, so start a fresh one
		batch = make([]*core.CanonicalProduct, 0, it.batchSize)

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if len(batch) > 0 {
		return fn(batch)
	}

	return nil
}
