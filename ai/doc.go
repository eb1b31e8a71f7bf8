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


// Package ai provides text embedding for catalog search.
//
// The package defines the Embedder interface and the Encoder that wraps any
// Embedder with the operational policies ingestion depends on: per-request
// timeouts, bounded retry with exponential backoff, optional rate limiting,
// L2 normalization, and a per-model-version cache that keeps encoding
// deterministic within a process.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// This package follows a mixed constructor pattern based on use case:
//
// openai.NewEmbedder returns the ai.Embedder INTERFACE to enforce
// abstraction and prevent accidental coupling to the concrete client.
//
//	embedder, err := openai.NewEmbedder(config) // returns ai.Embedder
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable test assertions and behavior injection via public fields.
//
//	mockEmbed := mock.NewMockEmbedder() // returns *mock.MockEmbedder
//	mockEmbed.EmbedTextFunc = ...       // needs concrete type
//	count := mockEmbed.CallCount()      // test assertion
//
// ai.NewEncoder also returns the concrete *Encoder: it is the single
// policy-bearing implementation, and callers need its ModelVersion and
// CacheSize accessors.
//
// # Usage Example
//
//	config := ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	)
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	encoder, err := ai.NewEncoder(embedder, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vector, err := encoder.Encode(ctx, "huile d'olive extra vierge")
//	if errors.Is(err, ai.ErrEncoding) {
//	    // skip this product, keep it in the catalog
//	}
package ai
