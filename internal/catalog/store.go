package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"PostCatalog/internal/domain"
)

var schemeExpr = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// StoreInput carries the caller-supplied store fields.
type StoreInput struct {
	PageIdentifier string
	DisplayName    string
	Description    string
}

// BuildStoreMetadata derives the store header for a snapshot.
func BuildStoreMetadata(in StoreInput, productCount, categoryCount int, syncedAt time.Time) domain.StoreMetadata {
	return domain.StoreMetadata{
		PageURL:         in.PageIdentifier,
		DisplayName:     DisplayName(in.PageIdentifier, in.DisplayName),
		Description:     Description(in.PageIdentifier, in.Description, categoryCount),
		LastSyncedAt:    syncedAt,
		TotalProducts:   productCount,
		TotalCategories: categoryCount,
	}
}

// BuildSnapshot assembles the persisted document; syncedAt is written on both the store and the snapshot.
func BuildSnapshot(in StoreInput, products []domain.ProductRecord, syncedAt time.Time) domain.CatalogSnapshot {
	if products == nil {
		products = []domain.ProductRecord{}
	}
	categories := BuildCategories(products)
	store := BuildStoreMetadata(in, len(products), len(categories), syncedAt)

	return domain.CatalogSnapshot{
		Store:        &store,
		Products:     products,
		Categories:   categories,
		LastSyncedAt: &syncedAt,
	}
}

// DisplayName prefers the explicit name, otherwise derives one from the page identifier.
func DisplayName(pageIdentifier, explicit string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}

	id := strings.TrimSpace(pageIdentifier)
	u, err := url.Parse(id)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if stripped := schemeExpr.ReplaceAllString(id, ""); stripped != "" {
			return stripped
		}
		return id
	}

	if segment := lastSegment(u.Path); segment != "" {
		words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(segment))
		return cases.Title(language.Und, cases.NoLower).String(strings.Join(words, " "))
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if dot := strings.LastIndex(host, "."); dot > 0 {
		host = host[:dot]
	}
	name := strings.Join(strings.Fields(strings.NewReplacer(".", " ", "-", " ", "_", " ").Replace(host)), " ")
	if name == "" {
		return id
	}
	return name
}

// Description prefers the explicit text, otherwise generates one.
func Description(pageIdentifier, explicit string, categoryCount int) string {
	if desc := strings.TrimSpace(explicit); desc != "" {
		return desc
	}

	noun := "categories"
	if categoryCount == 1 {
		noun = "category"
	}
	return fmt.Sprintf("Catalog generated from %s with %d %s.", strings.TrimSpace(pageIdentifier), categoryCount, noun)
}

func lastSegment(path string) string {
	parts := strings.Split(path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(parts[i]); seg != "" {
			return seg
		}
	}
	return ""
}
