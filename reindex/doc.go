// Package reindex re-embeds the catalog when the embedding model changes.
//
// A model version change invalidates every stored vector. The Reindexer
// walks all products in batches, encodes them under the new model version,
// prunes embeddings left over from older versions, and rebuilds the vector
// index from the surviving embeddings, reporting progress along the way.
package reindex
