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


package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/soukdata/souq/core"
)

// Normalizer cleans raw scraped records into NormalizedRecords.
// It is stateless apart from its vocabulary and safe for concurrent use.
type Normalizer struct {
	vocab *Vocabulary
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithVocabulary replaces the built-in category vocabulary.
func WithVocabulary(vocab *Vocabulary) Option {
	return func(n *Normalizer) {
		if vocab != nil {
			n.vocab = vocab
		}
	}
}

// New creates a Normalizer with the default vocabulary.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		vocab: DefaultVocabulary(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Vocabulary returns the active category vocabulary.
func (n *Normalizer) Vocabulary() *Vocabulary {
	return n.vocab
}

// Normalize converts one raw record into a normalized record.
//
// Text fields are stripped of control characters and collapsed to single
// spaces. Price text parses tolerantly: failures yield a nil price. The
// category maps through the vocabulary, falling back to CategoryUnknown.
// The only rejection is a name that is empty after cleaning; the returned
// error then wraps core.ErrInvalidRecord and the record should be dropped.
func (n *Normalizer) Normalize(raw core.RawRecord) (core.NormalizedRecord, error) {
	if err := core.ValidateRawRecord(&raw); err != nil {
		return core.NormalizedRecord{}, err
	}

	name := CleanText(raw.Name)
	if name == "" {
		return core.NormalizedRecord{}, fmt.Errorf("%w: %w", core.ErrInvalidRecord, ErrNameRequired)
	}

	record := core.NormalizedRecord{
		Name:         name,
		Price:        ParsePrice(raw.PriceText),
		Category:     n.vocab.Categorize(CleanText(raw.Category), name),
		Description:  CleanText(raw.Description),
		ImageURL:     strings.TrimSpace(raw.ImageURL),
		SourceURL:    strings.TrimSpace(raw.SourceURL),
		ScrapedAt:    raw.ScrapedAt,
		Brand:        ExtractBrand(name),
		PackSize:     ExtractPackSize(name),
		Promo:        DetectPromotion(raw.PriceText),
		ReducedPrice: ParseReducedPrice(raw.PriceText),
	}

	return record, nil
}

// CleanText strips control characters and collapses whitespace runs into
// single spaces. Leading and trailing whitespace is removed.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsControl(r):
			// zero-width markup noise; drop without breaking words
			continue
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
