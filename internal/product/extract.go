package product

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"PostCatalog/internal/domain"
)

const (
	untitledProduct = "Untitled Product"
	maxTitleRunes   = 80
	truncatedRunes  = 77
	ellipsis        = "…"
	marketCurrency  = "BDT"
)

var (
	priceExpr    = regexp.MustCompile(`(?i)(?:৳|bdt|taka|tk)\s*(\d+(?:,\d{3})*(?:\.\d{1,2})?)`)
	hashtagExpr  = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// ExtractPrice finds the first currency-marked amount. Grouping commas are removed before matching.
func ExtractPrice(text string) (*float64, string) {
	match := priceExpr.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if match == nil {
		return nil, marketCurrency
	}

	amount, err := decimal.NewFromString(match[1])
	if err != nil {
		return nil, marketCurrency
	}

	value := amount.InexactFloat64()
	return &value, marketCurrency
}

// ExtractTitle returns the first non-blank line, truncated to fit a product card.
func ExtractTitle(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return untitledProduct
	}

	var first string
	for _, line := range strings.Split(trimmed, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			first = line
			break
		}
	}
	if first == "" {
		return untitledProduct
	}

	if utf8.RuneCountInString(first) <= maxTitleRunes {
		return first
	}

	runes := []rune(first)
	return strings.TrimSpace(string(runes[:truncatedRunes])) + ellipsis
}

// ExtractHashtags returns lowercased hashtag bodies in order of appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagExpr.FindAllStringSubmatch(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}
	return tags
}

// DetermineAvailability classifies stock status; pre-order wins over out-of-stock.
func DetermineAvailability(text string) domain.Availability {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "pre-order"), strings.Contains(lower, "pre order"):
		return domain.AvailabilityPreorder
	case strings.Contains(lower, "stock out"), strings.Contains(lower, "out of stock"):
		return domain.AvailabilityOutOfStock
	default:
		return domain.AvailabilityInStock
	}
}

func buildTags(post domain.CategorizedPost) []string {
	candidates := ExtractHashtags(post.TextContent)
	for _, kw := range post.MatchedKeywords {
		candidates = append(candidates, whitespaceRE.ReplaceAllString(kw, "-"))
	}
	candidates = append(candidates, post.CategoryID)

	seen := make(map[string]struct{}, len(candidates))
	tags := make([]string, 0, len(candidates))
	for _, tag := range candidates {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
