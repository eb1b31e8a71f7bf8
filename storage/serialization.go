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


package storage

import (
	"fmt"

	"github.com/soukdata/souq/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalProduct serializes a CanonicalProduct to bytes.
func MarshalProduct(product *core.CanonicalProduct) []byte {
	buf := make([]byte, core.CanonicalProductMUS.Size(*product))
	core.CanonicalProductMUS.Marshal(*product, buf)
	return buf
}

// UnmarshalProduct deserializes a CanonicalProduct from bytes.
func UnmarshalProduct(data []byte) (*core.CanonicalProduct, error) {
	product, _, err := core.CanonicalProductMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &product, nil
}

// MarshalEmbedding serializes a ProductEmbedding to bytes.
func MarshalEmbedding(embedding *core.ProductEmbedding) []byte {
	buf := make([]byte, core.ProductEmbeddingMUS.Size(*embedding))
	core.ProductEmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalEmbedding deserializes a ProductEmbedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.ProductEmbedding, error) {
	embedding, _, err := core.ProductEmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &embedding, nil
}
