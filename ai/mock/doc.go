// Package mock provides a test double implementation of ai.Embedder.
//
// The mock allows tests to run without an embedding service and enables
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "huile d'olive")
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service unavailable")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
//
// # Default Behavior
//
// The default embedding is a unit-length bag-of-tokens vector: the same text
// always produces the same vector, and texts sharing tokens score higher
// under cosine similarity. That makes ranking assertions possible without a
// real model.
package mock
