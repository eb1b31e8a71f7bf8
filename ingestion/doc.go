// Package ingestion turns scraped raw records into searchable catalog state.
//
// The Pipeline type runs the full flow for one batch, including:
//   - Normalizing raw records concurrently
//   - Deduplicating normalized records into canonical products
//   - Persisting products, then embedding and indexing them
//
// The parallel stages run on worker pools with a barrier between stages.
// Invalid records are dropped and counted; products whose embedding fails
// after retries stay in the catalog but are skipped from the index. Every
// run produces a RunSummary accounting for each input record.
package ingestion
