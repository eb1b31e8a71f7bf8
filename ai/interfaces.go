package ai

import "context"

// Embedder turns catalog text into vectors for semantic similarity.
// Implementations must be safe for concurrent use: the ingestion pipeline
// calls them from multiple workers at once.
type Embedder interface {
	// EmbedText embeds a single text, typically a product description or a
	// search query.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds a batch of texts in one round trip. The result holds
	// one vector per input, in input order; a failure on any text fails the
	// whole batch.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
