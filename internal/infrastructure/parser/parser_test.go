package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PostCatalog/internal/ports"
	"PostCatalog/internal/scanner"
)

const sampleExport = `<!doctype html>
<html><body>
<article class="post" data-post-id="p-1" data-likes="12" data-comments="3" data-shares="1" lang="bn">
  <div class="post-text">Cotton saree<br>Price ৳ 2,100 #fashion</div>
  <time datetime="2024-05-01T10:00:00Z"></time>
  <img src="/media/saree.jpg">
  <a class="permalink" href="/posts/p-1">open</a>
  <ul class="keywords"><li>saree</li><li>cotton</li></ul>
</article>
<article class="post">
  <div class="post-text">no id, skipped</div>
</article>
<article class="post" data-post-id="p-2">
  <div class="post-text">Leather wallet Tk 900</div>
</article>
<article class="post" data-post-id="p-3">
  <div class="post-text">Honey jar</div>
</article>
</body></html>`

func TestMockScannerDeterministicFeed(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock := NewMockScanner(func() time.Time { return now })

	posts, err := mock.Scan(context.Background(), scanner.Request{
		PageIdentifier: "ab/",
		PostLimit:      8,
		IncludeMedia:   true,
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(posts) != 8 {
		t.Fatalf("expected 8 posts, got %d", len(posts))
	}

	// 'a' + 'b' + '/' = 97 + 98 + 47
	if posts[0].ID != "242-1" || posts[7].ID != "242-8" {
		t.Fatalf("unexpected ids %q %q", posts[0].ID, posts[7].ID)
	}
	if posts[0].PermalinkURL != "ab/posts/242-1" {
		t.Fatalf("unexpected permalink %q", posts[0].PermalinkURL)
	}
	if posts[6].TextContent != posts[0].TextContent {
		t.Fatalf("feed should cycle after %d posts", MockFeedSize)
	}
	if !posts[2].Timestamp.Equal(now.Add(-2 * time.Hour)) {
		t.Fatalf("unexpected timestamp %s", posts[2].Timestamp)
	}
	if len(posts[0].MediaURLs) != 1 {
		t.Fatalf("expected media, got %v", posts[0].MediaURLs)
	}
	if posts[0].RawMetadata["source_page"] != "ab/" || posts[0].RawMetadata["generated"] != true {
		t.Fatalf("unexpected metadata %v", posts[0].RawMetadata)
	}
}

func TestMockScannerCapsAndDropsMedia(t *testing.T) {
	t.Parallel()

	posts, err := NewMockScanner(nil).Scan(context.Background(), scanner.Request{
		PageIdentifier: "https://facebook.com/shop",
		PostLimit:      500,
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(posts) != scanner.MaxPosts {
		t.Fatalf("expected %d posts, got %d", scanner.MaxPosts, len(posts))
	}
	for _, post := range posts {
		if post.MediaURLs == nil || len(post.MediaURLs) != 0 {
			t.Fatalf("expected empty media, got %v", post.MediaURLs)
		}
	}
}

func TestMockScannerHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMockScanner(nil).Scan(ctx, scanner.Request{PageIdentifier: "shop"}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestHTMLScannerParsesRemoteExport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sampleExport))
	}))
	defer srv.Close()

	htmlScanner := NewHTMLScanner(srv.Client(), nil)
	posts, err := htmlScanner.Scan(context.Background(), scanner.Request{
		PageIdentifier: srv.URL + "/shop",
		PostLimit:      10,
		IncludeMedia:   true,
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.ID != "p-1" {
		t.Fatalf("unexpected id %q", first.ID)
	}
	if first.TextContent != "Cotton saree\nPrice ৳ 2,100 #fashion" {
		t.Fatalf("unexpected text %q", first.TextContent)
	}
	if first.Engagement.Likes != 12 || first.Engagement.Comments != 3 || first.Engagement.Shares != 1 {
		t.Fatalf("unexpected engagement %+v", first.Engagement)
	}
	if !first.Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %s", first.Timestamp)
	}
	if len(first.MediaURLs) != 1 || first.MediaURLs[0] != srv.URL+"/media/saree.jpg" {
		t.Fatalf("unexpected media %v", first.MediaURLs)
	}
	if first.PermalinkURL != srv.URL+"/posts/p-1" {
		t.Fatalf("unexpected permalink %q", first.PermalinkURL)
	}
	keywords := first.MetadataKeywords()
	if len(keywords) != 2 || keywords[0] != "saree" {
		t.Fatalf("unexpected keywords %v", keywords)
	}
	if posts[1].PermalinkURL != srv.URL+"/shop/posts/p-2" {
		t.Fatalf("unexpected fallback permalink %q", posts[1].PermalinkURL)
	}
}

func TestHTMLScannerReadsFileAndRespectsLimit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.html")
	if err := os.WriteFile(path, []byte(sampleExport), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	posts, err := NewHTMLScanner(nil, nil).Scan(context.Background(), scanner.Request{
		PageIdentifier: "shop",
		PostLimit:      2,
		Options:        map[string]string{"path": path},
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if len(posts[0].MediaURLs) != 0 {
		t.Fatalf("media should be skipped, got %v", posts[0].MediaURLs)
	}
}

func TestHTMLScannerUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTMLScanner(srv.Client(), nil).Scan(context.Background(), scanner.Request{PageIdentifier: srv.URL})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestStrategySourceResolvesConfiguredScanner(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(NewMockScanner(nil))

	source := NewStrategySource(reg, "mock", nil, nil)
	posts, err := source.FetchPosts(context.Background(), "shop", ports.FetchOptions{PostLimit: 3})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}

	missing := NewStrategySource(reg, "html", nil, nil)
	if _, err := missing.FetchPosts(context.Background(), "shop", ports.FetchOptions{}); err == nil {
		t.Fatal("expected unregistered scanner error")
	}
}
