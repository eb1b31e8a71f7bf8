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


package core

import "fmt"

// ValidateRawRecord validates a RawRecord before normalization.
//
// Validation rules:
//   - SourceURL must not be empty (merge provenance depends on it)
//
// NOT validated (handled by normalization):
//   - Name (empty-after-cleaning is a normalization rejection)
//   - PriceText and Category (unparseable values degrade, never reject)
func ValidateRawRecord(record *RawRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.SourceURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptySourceURL)
	}

	return nil
}

// ValidateProduct validates a CanonicalProduct according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Category must not be empty (CategoryUnknown is a valid category)
//   - MergedFrom must reference at least one source record
//
// NOT validated (populated elsewhere):
//   - Price (nil means no parseable price survived the merge)
//   - Provenance fields for values no candidate supplied
func ValidateProduct(product *CanonicalProduct) error {
	if product == nil {
		return fmt.Errorf("%w: product is nil", ErrInvalidProduct)
	}

	if product.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyName)
	}

	if product.Category == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrEmptyCategory)
	}

	if len(product.MergedFrom) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProduct, ErrNoSources)
	}

	return nil
}

// ValidateEmbedding validates a ProductEmbedding according to domain rules.
//
// Validation rules:
//   - Vector must not be empty
//   - ModelVersion must not be empty
func ValidateEmbedding(embedding *ProductEmbedding) error {
	if embedding == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidEmbedding)
	}

	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyVector)
	}

	if embedding.ModelVersion == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyModelVersion)
	}

	return nil
}
