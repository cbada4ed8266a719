package parser

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/scanner"
)

type mockPost struct {
	text       string
	media      []string
	engagement domain.Engagement
	metadata   map[string]any
}

var mockFeed = []mockPost{
	{
		text:       "Handcrafted Jamdani saree now available! Soft cotton weave perfect for festivals. ৳ 3,200 only. #fashion #saree #handloom",
		media:      []string{"https://picsum.photos/seed/jamdani/900/900"},
		engagement: domain.Engagement{Likes: 523, Comments: 87, Shares: 44},
		metadata:   map[string]any{"language": "bn", "detected_category": "fashion"},
	},
	{
		text:       "Wireless Bluetooth earbuds with 36h backup and noise cancellation. Intro price BDT 1,500. Free home delivery in Dhaka 🎧 #electronics #gadget",
		media:      []string{"https://picsum.photos/seed/earbuds/900/900"},
		engagement: domain.Engagement{Likes: 812, Comments: 134, Shares: 62},
		metadata:   map[string]any{"language": "en", "detected_category": "electronics"},
	},
	{
		text:       "Herbal glow face serum infused with vitamin C. ৳950 launch offer with cash on delivery. #beauty #skincare #cosmetics",
		media:      []string{"https://picsum.photos/seed/serum/900/900"},
		engagement: domain.Engagement{Likes: 411, Comments: 59, Shares: 22},
		metadata:   map[string]any{"language": "bn", "detected_category": "cosmetics"},
	},
	{
		text:       "Premium acacia wood bedside lamp with woven shade. Warm glow for cozy nights. Price tk 1,800. #home #decor #lighting",
		media:      []string{"https://picsum.photos/seed/lamp/900/900"},
		engagement: domain.Engagement{Likes: 265, Comments: 32, Shares: 15},
		metadata:   map[string]any{"language": "en", "detected_category": "home_decor"},
	},
	{
		text:       "Organic sunflower honey collected from Dinajpur. ৳600 per 500g jar. Limited stock! #food #honey #organic",
		media:      []string{"https://picsum.photos/seed/honey/900/900"},
		engagement: domain.Engagement{Likes: 689, Comments: 142, Shares: 88},
		metadata:   map[string]any{"language": "bn", "detected_category": "food"},
	},
	{
		text:       "Genuine leather wallet with RFID protection. Introductory offer Tk 1,250. Gift packaging available. #accessories #leather",
		media:      []string{"https://picsum.photos/seed/wallet/900/900"},
		engagement: domain.Engagement{Likes: 377, Comments: 51, Shares: 19},
		metadata:   map[string]any{"language": "bn", "detected_category": "accessories"},
	},
}

// MockFeedSize is the number of distinct posts in the built-in feed.
var MockFeedSize = len(mockFeed)

// MockScanner serves a deterministic feed cycled up to the requested limit.
type MockScanner struct {
	now func() time.Time
}

// NewMockScanner uses now as the feed clock; nil means time.Now.
func NewMockScanner(now func() time.Time) *MockScanner {
	if now == nil {
		now = time.Now
	}
	return &MockScanner{now: now}
}

// Name identifies the strategy inside the registry.
func (m *MockScanner) Name() string {
	return "mock"
}

// Scan returns Limit() posts whose ids depend only on the page identifier and position.
func (m *MockScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := req.Limit()
	now := m.now().UTC()
	prefix := pageChecksum(req.PageIdentifier)
	base := strings.TrimSuffix(req.PageIdentifier, "/")

	posts := make([]domain.Post, 0, limit)
	for i := 0; i < limit; i++ {
		item := mockFeed[i%len(mockFeed)]
		id := fmt.Sprintf("%d-%d", prefix, i+1)

		media := []string{}
		if req.IncludeMedia {
			media = append(media, item.media...)
		}

		metadata := make(map[string]any, len(item.metadata)+2)
		for k, v := range item.metadata {
			metadata[k] = v
		}
		metadata["source_page"] = req.PageIdentifier
		metadata["generated"] = true

		posts = append(posts, domain.Post{
			ID:           id,
			TextContent:  item.text,
			MediaURLs:    media,
			Timestamp:    now.Add(-time.Duration(i) * time.Hour),
			Engagement:   item.engagement,
			PermalinkURL: fmt.Sprintf("%s/posts/%s", base, id),
			RawMetadata:  metadata,
		})
	}

	return posts, nil
}

// pageChecksum sums the UTF-16 code units of the page identifier.
func pageChecksum(page string) int {
	sum := 0
	for _, unit := range utf16.Encode([]rune(page)) {
		sum += int(unit)
	}
	return sum
}
