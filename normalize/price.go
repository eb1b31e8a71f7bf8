package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Price text arrives in whatever shape the site renders: "45,00 DH",
// "1.299,00 DHS", "2 achetés = 79,90 DH", "$ 12.50", or plain garbage.
// Amounts carrying the dirham marker are preferred; otherwise the first
// number wins. Anything unparseable yields nil, never an error.
var (
	currencyAmountRe = regexp.MustCompile(`(?i)(\d+(?:[\s\x{00A0}]?\d{3})*(?:[.,]\d+)?)\s*(?:dhs?|mad)`)
	bareAmountRe     = regexp.MustCompile(`\d+(?:[\s\x{00A0}]?\d{3})*(?:[.,]\d+)?`)
)

// ParsePrice extracts the main price from raw price text.
// Returns nil when no amount can be parsed.
func ParsePrice(text string) *float64 {
	if text == "" {
		return nil
	}

	if m := currencyAmountRe.FindStringSubmatch(text); m != nil {
		return parseAmount(m[1])
	}
	if m := bareAmountRe.FindString(text); m != "" {
		return parseAmount(m)
	}
	return nil
}

// ParseReducedPrice extracts the promotional price from raw price text.
// Promotional listings render two dirham amounts ("45,00 DH 30,00 DH");
// the last one is the reduced price. Returns nil when fewer than two
// amounts carry the currency marker.
func ParseReducedPrice(text string) *float64 {
	if text == "" {
		return nil
	}

	matches := currencyAmountRe.FindAllStringSubmatch(text, -1)
	if len(matches) < 2 {
		return nil
	}
	return parseAmount(matches[len(matches)-1][1])
}

func parseAmount(raw string) *float64 {
	value, err := strconv.ParseFloat(normalizeAmount(raw), 64)
	if err != nil {
		return nil
	}
	return &value
}

// normalizeAmount rewrites a localized amount into strconv syntax. The
// rightmost separator is taken as the decimal point; every earlier separator
// and all spaces are thousands noise.
func normalizeAmount(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	sep := lastDot
	if lastComma > sep {
		sep = lastComma
	}
	if sep < 0 {
		return s
	}
	return dropSeparators(s[:sep]) + "." + s[sep+1:]
}

func dropSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, s)
}
