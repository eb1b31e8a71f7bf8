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


package dedup

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/soukdata/souq/core"
)

// mergeCluster folds same-fingerprint candidates into one canonical product.
// Candidates are sorted by (SourceURL, ScrapedAt) before any field policy
// runs, so ties break the same way no matter how records arrived.
func mergeCluster(fingerprint string, candidates []core.NormalizedRecord) *core.CanonicalProduct {
	slices.SortFunc(candidates, compareCandidates)

	product := &core.CanonicalProduct{
		Id:       core.IDFromContent(fingerprint),
		Category: core.CategoryUnknown,
	}

	for _, c := range candidates {
		if longer(c.Name, product.Name) {
			product.Name = c.Name
			product.Provenance.Name = c.SourceURL
		}
		if longer(c.Description, product.Description) {
			product.Description = c.Description
			product.Provenance.Description = c.SourceURL
		}
		if product.Category == core.CategoryUnknown && c.Category != "" && c.Category != core.CategoryUnknown {
			product.Category = c.Category
			product.Provenance.Category = c.SourceURL
		}
		if product.ImageURL == "" && c.ImageURL != "" {
			product.ImageURL = c.ImageURL
			product.Provenance.ImageURL = c.SourceURL
		}
		if product.Brand == "" && c.Brand != "" {
			product.Brand = c.Brand
		}
		if product.PackSize == "" && c.PackSize != "" {
			product.PackSize = c.PackSize
		}
		if c.Promo {
			product.Promo = true
		}
	}

	applyPriceWinner(product, candidates)
	product.MergedFrom = mergedFrom(candidates)
	return product
}

// applyPriceWinner takes the price from the most recently scraped candidate
// that parsed one. The reduced price travels with the winning record so a
// promo pair never mixes two scrapes. Candidates must already be sorted; the
// strict After comparison keeps the earlier candidate on equal timestamps.
func applyPriceWinner(product *core.CanonicalProduct, candidates []core.NormalizedRecord) {
	var winner *core.NormalizedRecord
	for i := range candidates {
		if candidates[i].Price == nil {
			continue
		}
		if winner == nil || candidates[i].ScrapedAt.After(winner.ScrapedAt) {
			winner = &candidates[i]
		}
	}
	if winner == nil {
		return
	}

	// merged products own their values
	price := *winner.Price
	product.Price = &price
	product.Provenance.Price = winner.SourceURL
	if winner.ReducedPrice != nil {
		reduced := *winner.ReducedPrice
		product.ReducedPrice = &reduced
	}
}

func compareCandidates(a, b core.NormalizedRecord) int {
	if c := strings.Compare(a.SourceURL, b.SourceURL); c != 0 {
		return c
	}
	return a.ScrapedAt.Compare(b.ScrapedAt)
}

// longer reports whether candidate beats current under the longest-non-empty
// policy. Ties keep the current value, so the earlier candidate wins.
func longer(candidate, current string) bool {
	if candidate == "" {
		return false
	}
	return utf8.RuneCountInString(candidate) > utf8.RuneCountInString(current)
}

func mergedFrom(candidates []core.NormalizedRecord) []string {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.SourceURL)
	}
	slices.Sort(urls)
	return slices.Compact(urls)
}
