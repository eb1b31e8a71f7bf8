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


package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/storage"
)

// Header is the column layout of CSV exports.
var Header = []string{"product_id", "name", "price", "category", "description", "image_url"}

func compareProducts(a, b *core.CanonicalProduct) int {
	if a.Id < b.Id {
		return -1
	}
	if a.Id > b.Id {
		return 1
	}
	return 0
}

// WriteCSV writes products as CSV, sorted by product ID so repeated exports
// of the same catalog are byte-identical.
func WriteCSV(w io.Writer, products []*core.CanonicalProduct) error {
	sorted := slices.Clone(products)
	slices.SortFunc(sorted, compareProducts)

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, product := range sorted {
		if err := cw.Write(row(product)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CatalogCSV streams every stored product as CSV without loading the catalog
// into memory. Rows follow the repository scan order, which is stable for an
// unchanged store. Returns the number of products written.
func CatalogCSV(ctx context.Context, repo storage.ProductRepository, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}

	count := 0
	for product, err := range repo.AllProducts(ctx) {
		if err != nil {
			return count, fmt.Errorf("scanning products: %w", err)
		}
		if err := cw.Write(row(product)); err != nil {
			return count, err
		}
		count++
	}

	cw.Flush()
	return count, cw.Error()
}

// row renders one product as a CSV record. An unknown price stays empty
// rather than being faked as zero.
func row(product *core.CanonicalProduct) []string {
	price := ""
	if product.Price != nil {
		price = strconv.FormatFloat(*product.Price, 'f', 2, 64)
	}
	return []string{
		strconv.FormatUint(uint64(product.Id), 10),
		product.Name,
		price,
		product.Category,
		product.Description,
		product.ImageURL,
	}
}
