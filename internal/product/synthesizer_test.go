package product

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PostCatalog/internal/domain"
)

func TestExtractPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want *float64
	}{
		{"taka sign with grouping", "Jamdani saree ৳ 3,200 only #saree", ptr(3200)},
		{"bdt token", "Intro price BDT 1,500. Free delivery", ptr(1500)},
		{"sign without space", "Face serum ৳950 launch offer", ptr(950)},
		{"tk lowercase", "Price tk 1,800.", ptr(1800)},
		{"taka with decimals", "Only Taka 12,345.50 today", ptr(12345.5)},
		{"large grouping", "৳1,250,000 villa", ptr(1250000)},
		{"no marker", "Lovely dress for 500", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, currency := ExtractPrice(tt.text)
			assert.Equal(t, "BDT", currency)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Untitled Product", ExtractTitle(""))
	assert.Equal(t, "Untitled Product", ExtractTitle("  \n\t "))
	assert.Equal(t, "Handcrafted saree", ExtractTitle("\n\n  Handcrafted saree  \nSecond line"))

	exact := strings.Repeat("a", 80)
	assert.Equal(t, exact, ExtractTitle(exact))

	long := strings.Repeat("b", 85)
	got := ExtractTitle(long)
	assert.Equal(t, strings.Repeat("b", 77)+"…", got)
	assert.Equal(t, 78, utf8.RuneCountInString(got))

	bengali := strings.Repeat("শা", 50)
	assert.Equal(t, 78, utf8.RuneCountInString(ExtractTitle(bengali)))
}

func TestExtractHashtags(t *testing.T) {
	t.Parallel()

	got := ExtractHashtags("New #Fashion drop #saree #hand_loom #eid-2024 #উৎসব # lone")
	assert.Equal(t, []string{"fashion", "saree", "hand_loom", "eid-2024", "উৎসব"}, got)
	assert.Empty(t, ExtractHashtags("no tags"))
}

func TestDetermineAvailability(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.AvailabilityPreorder, DetermineAvailability("Now open for PRE-ORDER"))
	assert.Equal(t, domain.AvailabilityPreorder, DetermineAvailability("pre order, also out of stock"))
	assert.Equal(t, domain.AvailabilityOutOfStock, DetermineAvailability("Sorry, Out Of Stock"))
	assert.Equal(t, domain.AvailabilityOutOfStock, DetermineAvailability("stock out this week"))
	assert.Equal(t, domain.AvailabilityInStock, DetermineAvailability("Limited stock!"))
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	posts := []domain.CategorizedPost{
		{
			Post: domain.Post{
				ID:           "597-1",
				TextContent:  "  Handcrafted Jamdani saree now available! ৳ 3,200 only. #fashion #saree #handloom  ",
				MediaURLs:    []string{"https://picsum.photos/seed/jamdani/900/900"},
				Timestamp:    published,
				PermalinkURL: "https://facebook.com/shop/posts/597-1",
			},
			CategoryID:      "fashion-apparel",
			CategoryName:    "Fashion & Apparel",
			MatchedKeywords: []string{"fashion", "saree"},
		},
		{
			Post:            domain.Post{ID: "597-2", TextContent: "Wooden lamp pre-order"},
			CategoryID:      "home-living",
			CategoryName:    "Home & Living",
			MatchedKeywords: []string{"lamp", "ঘর সাজানো"},
		},
	}

	got := NewSynthesizer(DefaultOptions()).Synthesize(posts)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "prod-597-1", first.ID)
	assert.Equal(t, "Handcrafted Jamdani saree now available! ৳ 3,200 only. #fashion #saree #handloom", first.Title)
	assert.Equal(t, first.Title, first.Description)
	require.NotNil(t, first.Price)
	assert.InDelta(t, 3200, *first.Price, 1e-9)
	assert.Equal(t, "BDT", first.Currency)
	assert.Equal(t, []string{"fashion", "saree", "handloom", "fashion-apparel"}, first.Tags)
	assert.Equal(t, domain.AvailabilityInStock, first.Availability)
	assert.Equal(t, "597-1", first.SourcePostID)
	assert.Equal(t, "https://facebook.com/shop/posts/597-1", first.SourcePostURL)
	assert.Equal(t, published, first.PublishedAt)

	second := got[1]
	assert.Equal(t, "prod-597-2", second.ID)
	assert.Nil(t, second.Price)
	assert.Equal(t, []string{}, second.ImageURLs)
	assert.Equal(t, []string{"lamp", "ঘর-সাজানো", "home-living"}, second.Tags)
	assert.Equal(t, domain.AvailabilityPreorder, second.Availability)

	again := NewSynthesizer(DefaultOptions()).Synthesize(posts)
	assert.Equal(t, got[0].ID, again[0].ID)
}

func TestSynthesize_PricingDisabled(t *testing.T) {
	t.Parallel()

	s := NewSynthesizer(Options{ExtractPricing: false, DefaultCurrency: "USD"})
	got := s.Synthesize([]domain.CategorizedPost{{Post: domain.Post{ID: "1", TextContent: "৳ 500 only"}}})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
	assert.Equal(t, "USD", got[0].Currency)

	s = NewSynthesizer(Options{})
	got = s.Synthesize([]domain.CategorizedPost{{Post: domain.Post{ID: "1", TextContent: "৳ 500 only"}}})
	assert.Equal(t, "BDT", got[0].Currency)
}

func ptr(v float64) *float64 {
	return &v
}
