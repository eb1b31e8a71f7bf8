// Package export renders the canonical catalog for downstream consumers.
//
// CSV exports carry flat, spreadsheet-friendly columns; JSON exports keep the
// full canonical record including provenance and merge history. Both are
// deterministic for a given catalog, so repeated exports diff cleanly.
package export
