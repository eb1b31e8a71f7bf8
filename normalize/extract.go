package normalize

import (
	"regexp"
	"strings"
)

var (
	// Brands render as a trailing uppercase marker: "Huile Olive 1L - MARQUE".
	brandRe = regexp.MustCompile(`-\s*([A-Z][A-Z\s&']+)$`)

	packSizeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+\s*(?:ml|l|g|kg|cm|pouces|x))`),
		regexp.MustCompile(`(?i)(\d+\s*(?:pièces|pieces|pack))`),
	}

	promoRe = regexp.MustCompile(`(?i)remise|promotion|-|%|achetés|offre`)
)

// ExtractBrand pulls the trailing brand marker out of a cleaned product name.
// Returns "" when the name carries no marker.
func ExtractBrand(name string) string {
	m := brandRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractPackSize pulls a size or quantity marker ("250 ml", "1 kg", "6 x")
// out of a cleaned product name. Returns "" when none is present.
func ExtractPackSize(name string) string {
	for _, re := range packSizeRes {
		if m := re.FindStringSubmatch(name); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// DetectPromotion reports whether raw price text carries promotion wording.
func DetectPromotion(priceText string) bool {
	return priceText != "" && promoRe.MatchString(priceText)
}
