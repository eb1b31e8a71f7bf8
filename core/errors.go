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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a scraped record failed validation and was dropped.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidProduct indicates a CanonicalProduct failed validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrInvalidEmbedding indicates a ProductEmbedding failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrEmptyName indicates the product name is empty after cleaning.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyCategory indicates the Category field is empty.
	ErrEmptyCategory = errors.New("category cannot be empty")

	// ErrEmptySourceURL indicates a record carries no source URL.
	ErrEmptySourceURL = errors.New("source url cannot be empty")

	// ErrNoSources indicates a product lists no merged source records.
	ErrNoSources = errors.New("product must reference at least one source record")

	// ErrEmptyVector indicates an embedding has a zero-length vector.
	ErrEmptyVector = errors.New("embedding vector cannot be empty")

	// ErrEmptyModelVersion indicates an embedding has no model version.
	ErrEmptyModelVersion = errors.New("model version cannot be empty")
)
