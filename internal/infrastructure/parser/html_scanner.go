package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/scanner"
)

// HTMLScanner reads posts from a static HTML export of a page.
//
// Each post is an <article class="post" data-post-id="..."> block with a .post-text body,
// optional <time datetime>, <img> media, an a.permalink link and .keywords li hints.
type HTMLScanner struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTMLScanner wires an HTTP client for remote exports.
func NewHTMLScanner(client *http.Client, logger *slog.Logger) *HTMLScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan loads the export from Options["path"] (file or URL), defaulting to the page identifier.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Post, error) {
	location := strings.TrimSpace(req.Options["path"])
	if location == "" {
		location = req.PageIdentifier
	}
	if location == "" {
		return nil, fmt.Errorf("no export location for page %q", req.PageIdentifier)
	}

	doc, err := h.load(ctx, location)
	if err != nil {
		return nil, err
	}

	posts := extractPosts(doc, req)
	if h.logger != nil {
		h.logger.Debug("html export parsed", "location", location, "posts", len(posts))
	}
	return posts, nil
}

func (h *HTMLScanner) load(ctx context.Context, location string) (*goquery.Document, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return h.fetchDocument(ctx, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	return parseDocument(f)
}

func (h *HTMLScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "PostCatalog/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("export returned %s", resp.Status)
	}

	return parseDocument(resp.Body)
}

func parseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractPosts(doc *goquery.Document, req scanner.Request) []domain.Post {
	limit := req.Limit()
	posts := make([]domain.Post, 0)

	doc.Find("article.post").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		post, ok := parseEntry(sel, req)
		if !ok {
			return true
		}
		posts = append(posts, post)
		return len(posts) < limit
	})

	return posts
}

func parseEntry(sel *goquery.Selection, req scanner.Request) (domain.Post, bool) {
	id := strings.TrimSpace(sel.AttrOr("data-post-id", ""))
	if id == "" {
		return domain.Post{}, false
	}

	body := sel.Find(".post-text").First()
	body.Find("br").ReplaceWithHtml("\n")
	text := strings.TrimSpace(body.Text())

	publishedAt := time.Now().UTC()
	if stamp, ok := sel.Find("time[datetime]").First().Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(stamp)); err == nil {
			publishedAt = parsed.UTC()
		}
	}

	media := []string{}
	if req.IncludeMedia {
		sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
			if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
				media = append(media, resolveLink(req.PageIdentifier, src))
			}
		})
	}

	permalink := strings.TrimSuffix(req.PageIdentifier, "/") + "/posts/" + id
	if href, ok := sel.Find("a.permalink").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		permalink = resolveLink(req.PageIdentifier, strings.TrimSpace(href))
	}

	var keywords []any
	sel.Find(".keywords li").Each(func(_ int, li *goquery.Selection) {
		if kw := strings.TrimSpace(li.Text()); kw != "" {
			keywords = append(keywords, kw)
		}
	})

	metadata := map[string]any{"source_page": req.PageIdentifier}
	if len(keywords) > 0 {
		metadata["keywords"] = keywords
	}
	if lang := strings.TrimSpace(sel.AttrOr("lang", "")); lang != "" {
		metadata["language"] = lang
	}

	return domain.Post{
		ID:          id,
		TextContent: text,
		MediaURLs:   media,
		Timestamp:   publishedAt,
		Engagement: domain.Engagement{
			Likes:    intAttr(sel, "data-likes"),
			Comments: intAttr(sel, "data-comments"),
			Shares:   intAttr(sel, "data-shares"),
		},
		PermalinkURL: permalink,
		RawMetadata:  metadata,
	}, true
}

func resolveLink(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil || !baseURL.IsAbs() {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

func intAttr(sel *goquery.Selection, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(sel.AttrOr(name, "")))
	if err != nil {
		return 0
	}
	return v
}
