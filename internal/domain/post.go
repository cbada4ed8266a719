package domain

import "time"

// Engagement holds the interaction counters reported for a post.
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// Post is a raw unit of page content fetched from a post source.
type Post struct {
	ID           string         `json:"id"`
	TextContent  string         `json:"textContent"`
	MediaURLs    []string       `json:"mediaUrls"`
	Timestamp    time.Time      `json:"timestamp"`
	Engagement   Engagement     `json:"engagement"`
	PermalinkURL string         `json:"permalinkUrl"`
	RawMetadata  map[string]any `json:"rawMetadata,omitempty"`
}

// MetadataKeywords returns keyword hints carried in raw metadata, if any.
func (p Post) MetadataKeywords() []string {
	raw, ok := p.RawMetadata["keywords"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// CategorizedPost is a post with exactly one assigned category.
type CategorizedPost struct {
	Post
	CategoryID             string   `json:"categoryId"`
	CategoryName           string   `json:"categoryName"`
	ConfidenceScore        float64  `json:"confidenceScore"`
	SuggestedSubcategories []string `json:"suggestedSubcategories"`
	CategoryHierarchy      []string `json:"categoryHierarchy"`
	MatchedKeywords        []string `json:"matchedKeywords"`
}
