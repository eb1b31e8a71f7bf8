package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so identical content
// produces identical IDs across runs and machines.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// RawRecord is a single scraped listing exactly as the crawler emitted it.
// Nothing in it is trusted: prices are free text, categories are site labels,
// names may collapse to nothing once cleaned. Records are immutable after
// decode; normalization produces new values instead of mutating these.
type RawRecord struct {
	SourceURL   string    `json:"source_url"`
	Name        string    `json:"raw_name"`
	PriceText   string    `json:"raw_price_text"`
	Category    string    `json:"raw_category_text"`
	Description string    `json:"raw_description"`
	ImageURL    string    `json:"image_url"`
	ScrapedAt   time.Time `json:"scrape_timestamp"`
}

// NormalizedRecord is a cleaned, typed rendition of one RawRecord.
// A nil Price means the raw text held no parseable amount.
type NormalizedRecord struct {
	Name         string
	Price        *float64
	Category     string // controlled vocabulary, or CategoryUnknown
	Description  string
	ImageURL     string
	SourceURL    string
	ScrapedAt    time.Time
	Brand        string   // trailing "- BRAND" marker, when present
	PackSize     string   // e.g. "250 ml", "6 x"
	Promo        bool     // promotion wording detected in the price text
	ReducedPrice *float64 // second amount in promotional price text
}

// CategoryUnknown is the fallback category for records whose raw label
// matches nothing in the vocabulary.
const CategoryUnknown = "unknown"

// FieldProvenance records, per canonical field, the source URL of the record
// that supplied the winning value during a merge.
type FieldProvenance struct {
	Name        string `json:"name,omitempty"`
	Price       string `json:"price,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// CanonicalProduct is one deduplicated catalog entry. Its Id derives from the
// dedup fingerprint, so the same underlying product keeps the same Id across
// runs. Products are only mutated through merges, which always produce a
// whole replacement value.
type CanonicalProduct struct {
	Id           ID              `json:"product_id"`
	Name         string          `json:"name"`
	Price        *float64        `json:"price,omitempty"`
	Category     string          `json:"category"`
	Description  string          `json:"description,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	PackSize     string          `json:"pack_size,omitempty"`
	Promo        bool            `json:"promo,omitempty"`
	ReducedPrice *float64        `json:"reduced_price,omitempty"`
	MergedFrom   []string        `json:"merged_from,omitempty"` // sorted source URLs folded into this product
	Provenance   FieldProvenance `json:"provenance"`
}

// EmbeddingText returns the text a product is embedded from: the description,
// falling back to the name when no description survived normalization.
func (p *CanonicalProduct) EmbeddingText() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Name
}

// ProductEmbedding is a stored embedding vector for one product under one
// model version. Vectors from different model versions never mix.
type ProductEmbedding struct {
	ProductId    ID
	ModelVersion string
	Vector       []float32
}

// SimilarityMatch represents a product match from vector similarity search.
type SimilarityMatch struct {
	ProductId ID
	Score     float32
}

// SearchResult represents a search result with the full product and relevance score.
type SearchResult struct {
	Product *CanonicalProduct `json:"product"`
	Score   float32           `json:"score"`
	Rank    int               `json:"rank"`
}
