// Package product derives storefront product records from categorized posts.
package product

import (
	"strings"

	"PostCatalog/internal/domain"
)

// IDPrefix is prepended to the source post id to form a product id.
const IDPrefix = "prod-"

// Options tunes price extraction.
type Options struct {
	ExtractPricing  bool
	DefaultCurrency string
}

// DefaultOptions extracts prices and falls back to BDT.
func DefaultOptions() Options {
	return Options{ExtractPricing: true, DefaultCurrency: marketCurrency}
}

// Synthesizer turns categorized posts into product records.
type Synthesizer struct {
	opts Options
}

// NewSynthesizer applies defaults for a blank currency.
func NewSynthesizer(opts Options) *Synthesizer {
	if strings.TrimSpace(opts.DefaultCurrency) == "" {
		opts.DefaultCurrency = marketCurrency
	}
	return &Synthesizer{opts: opts}
}

// ProductID is the stable product id for a source post.
func ProductID(sourcePostID string) string {
	return IDPrefix + sourcePostID
}

// Synthesize produces one ProductRecord per post, preserving order.
func (s *Synthesizer) Synthesize(posts []domain.CategorizedPost) []domain.ProductRecord {
	products := make([]domain.ProductRecord, 0, len(posts))
	for _, post := range posts {
		products = append(products, s.build(post))
	}
	return products
}

func (s *Synthesizer) build(post domain.CategorizedPost) domain.ProductRecord {
	var (
		price    *float64
		currency = s.opts.DefaultCurrency
	)
	if s.opts.ExtractPricing {
		price, currency = ExtractPrice(post.TextContent)
	}

	images := post.MediaURLs
	if images == nil {
		images = []string{}
	}

	return domain.ProductRecord{
		ID:            ProductID(post.ID),
		Title:         ExtractTitle(post.TextContent),
		Description:   strings.TrimSpace(post.TextContent),
		Price:         price,
		Currency:      currency,
		CategoryID:    post.CategoryID,
		CategoryName:  post.CategoryName,
		ImageURLs:     images,
		Tags:          buildTags(post),
		Availability:  DetermineAvailability(post.TextContent),
		SourcePostID:  post.ID,
		SourcePostURL: post.PermalinkURL,
		PublishedAt:   post.Timestamp,
	}
}
