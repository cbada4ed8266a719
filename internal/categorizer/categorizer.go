// Package categorizer assigns exactly one category to each post using an ordered keyword rule table.
package categorizer

import (
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/unicode/norm"

	"PostCatalog/internal/domain"
)

const (
	matchedBaseConfidence  = 0.6
	fallbackBaseConfidence = 0.3
	perKeywordConfidence   = 0.1
	maxKeywordBonus        = 0.3
	maxConfidence          = 0.95
)

var slugExpr = regexp.MustCompile(`[^a-z0-9]+`)

// Categorizer matches post text against the rule table in a single pass per post.
type Categorizer struct {
	rules  []Rule
	logger *slog.Logger

	mu       sync.Mutex
	matcher  *ahocorasick.Matcher
	keywords []string       // normalized dictionary fed to the matcher
	index    map[string]int // normalized keyword -> dictionary position
}

// New builds the keyword automaton for rules. A nil or empty rules slice uses DefaultRules.
func New(rules []Rule, logger *slog.Logger) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	c := &Categorizer{
		rules:  rules,
		logger: logger,
		index:  make(map[string]int),
	}

	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			normalized := normalize(kw)
			if normalized == "" {
				continue
			}
			if _, ok := c.index[normalized]; ok {
				continue
			}
			c.index[normalized] = len(c.keywords)
			c.keywords = append(c.keywords, normalized)
		}
	}

	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	}

	return c
}

// Categorize returns one CategorizedPost per post, preserving order.
func (c *Categorizer) Categorize(posts []domain.Post, customCategories []string, language string) []domain.CategorizedPost {
	c.debug("categorize posts", "count", len(posts), "language", language)

	out := make([]domain.CategorizedPost, 0, len(posts))
	for _, post := range posts {
		rule, matched := c.determine(post, customCategories)
		out = append(out, domain.CategorizedPost{
			Post:                   post,
			CategoryID:             rule.ID,
			CategoryName:           rule.Name,
			ConfidenceScore:        Confidence(len(matched)),
			SuggestedSubcategories: nonNil(rule.SuggestedSubcategories),
			CategoryHierarchy:      []string{rule.Name},
			MatchedKeywords:        matched,
		})
	}
	return out
}

func (c *Categorizer) determine(post domain.Post, customCategories []string) (Rule, []string) {
	hits := c.hits(postText(post))

	var (
		best        *Rule
		bestMatches []string
	)
	for i := range c.rules {
		rule := &c.rules[i]
		var matches []string
		for _, kw := range rule.Keywords {
			pos, ok := c.index[normalize(kw)]
			if ok && hits[pos] {
				matches = append(matches, kw)
			}
		}
		if len(matches) == 0 {
			continue
		}
		if best == nil || len(matches) > len(bestMatches) {
			best = rule
			bestMatches = matches
		}
	}

	if best != nil {
		return *best, bestMatches
	}

	if name, ok := firstCustomCategory(customCategories); ok {
		id := Slugify(name)
		if id == "" {
			id = customCategoryID
		}
		return Rule{ID: id, Name: name}, []string{}
	}

	return Rule{ID: generalCategoryID, Name: generalCategoryName}, []string{}
}

func (c *Categorizer) hits(text string) map[int]bool {
	if c.matcher == nil || text == "" {
		return nil
	}

	c.mu.Lock()
	found := c.matcher.Match([]byte(text))
	c.mu.Unlock()

	hits := make(map[int]bool, len(found))
	for _, idx := range found {
		hits[idx] = true
	}
	return hits
}

// Confidence maps the number of matched keywords onto [0.3, 0.95].
func Confidence(matched int) float64 {
	base := fallbackBaseConfidence
	if matched > 0 {
		base = matchedBaseConfidence
	}
	bonus := math.Min(float64(matched)*perKeywordConfidence, maxKeywordBonus)
	return math.Min(maxConfidence, base+bonus)
}

// Slugify lowercases input and collapses every non [a-z0-9] run into a single hyphen.
func Slugify(input string) string {
	slug := slugExpr.ReplaceAllString(strings.ToLower(input), "-")
	return strings.Trim(slug, "-")
}

func postText(post domain.Post) string {
	text := post.TextContent + " " + strings.Join(post.MetadataKeywords(), " ")
	return normalize(text)
}

func normalize(s string) string {
	return norm.NFKD.String(strings.ToLower(s))
}

func firstCustomCategory(names []string) (string, bool) {
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (c *Categorizer) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
