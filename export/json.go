package export

import (
	"encoding/json"
	"io"
	"slices"

	"github.com/soukdata/souq/core"
)

// WriteJSON writes products as an indented JSON array of full canonical
// records, sorted by product ID. Unlike the CSV export it keeps every field,
// including provenance and merge history.
func WriteJSON(w io.Writer, products []*core.CanonicalProduct) error {
	sorted := slices.Clone(products)
	slices.SortFunc(sorted, compareProducts)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sorted)
}
