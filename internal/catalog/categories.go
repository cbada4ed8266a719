// Package catalog aggregates product records into category roll-ups and store metadata.
package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"PostCatalog/internal/domain"
)

const (
	maxCategoryKeywords  = 5
	firstProductKeywords = 5
	laterProductKeywords = 3
)

type group struct {
	record domain.CategoryRecord
	seen   map[string]struct{}
}

// BuildCategories returns one record per distinct category id, sorted by name.
func BuildCategories(products []domain.ProductRecord) []domain.CategoryRecord {
	groups := make(map[string]*group)
	order := make([]string, 0)

	for _, p := range products {
		g, ok := groups[p.CategoryID]
		if !ok {
			g = &group{
				record: domain.CategoryRecord{ID: p.CategoryID, Name: p.CategoryName, Keywords: []string{}},
				seen:   map[string]struct{}{},
			}
			groups[p.CategoryID] = g
			order = append(order, p.CategoryID)
		}

		limit := laterProductKeywords
		if g.record.ProductCount == 0 {
			limit = firstProductKeywords
		}
		g.record.ProductCount++
		g.fold(p.Tags, limit)
	}

	records := make([]domain.CategoryRecord, 0, len(order))
	for _, id := range order {
		records = append(records, groups[id].record)
	}

	SortCategories(records)
	return records
}

func (g *group) fold(tags []string, limit int) {
	added := 0
	for _, tag := range tags {
		if added >= limit || len(g.record.Keywords) >= maxCategoryKeywords {
			return
		}
		if tag == "" || tag == g.record.ID {
			continue
		}
		if _, ok := g.seen[tag]; ok {
			continue
		}
		g.seen[tag] = struct{}{}
		g.record.Keywords = append(g.record.Keywords, tag)
		added++
	}
}

// SortCategories orders records by name with a locale-aware collator; equal names fall back to id.
func SortCategories(records []domain.CategoryRecord) {
	col := collate.New(language.Und)
	sort.SliceStable(records, func(i, j int) bool {
		if c := col.CompareString(records[i].Name, records[j].Name); c != 0 {
			return c < 0
		}
		return records[i].ID < records[j].ID
	})
}
