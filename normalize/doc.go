// Package normalize turns raw scraped listings into typed records.
//
// Normalization is pure and tolerant: free-text prices that cannot be parsed
// become nil rather than errors, unrecognized categories fall back to the
// unknown category, and only a name that is empty after cleaning rejects a
// record. Rejection is the caller's signal to drop that record and continue.
package normalize
