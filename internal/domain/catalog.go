package domain

import "time"

// Availability is the coarse stock status derived from post text.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityPreorder   Availability = "preorder"
)

// ProductRecord is the storefront product derived 1:1 from a categorized post.
type ProductRecord struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Price         *float64     `json:"price"`
	Currency      string       `json:"currency"`
	CategoryID    string       `json:"categoryId"`
	CategoryName  string       `json:"categoryName"`
	ImageURLs     []string     `json:"imageUrls"`
	Tags          []string     `json:"tags"`
	Availability  Availability `json:"availability"`
	SourcePostID  string       `json:"sourcePostId"`
	SourcePostURL string       `json:"sourcePostUrl"`
	PublishedAt   time.Time    `json:"publishedAt"`
}

// CategoryRecord is the roll-up of all products sharing a category id.
type CategoryRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ProductCount int      `json:"productCount"`
	Keywords     []string `json:"keywords"`
}

// StoreMetadata describes the storefront generated from a page.
type StoreMetadata struct {
	PageURL         string    `json:"pageUrl"`
	DisplayName     string    `json:"displayName"`
	Description     string    `json:"description"`
	LastSyncedAt    time.Time `json:"lastSyncedAt"`
	TotalProducts   int       `json:"totalProducts"`
	TotalCategories int       `json:"totalCategories"`
}

// CatalogSnapshot is the single persisted catalog document.
type CatalogSnapshot struct {
	Store        *StoreMetadata   `json:"store"`
	Products     []ProductRecord  `json:"products"`
	Categories   []CategoryRecord `json:"categories"`
	LastSyncedAt *time.Time       `json:"lastSyncedAt"`
}

// EmptySnapshot is the document served before the first successful sync.
func EmptySnapshot() CatalogSnapshot {
	return CatalogSnapshot{
		Store:      nil,
		Products:   []ProductRecord{},
		Categories: []CategoryRecord{},
	}
}

// Normalize replaces nil collections so the document always encodes arrays.
func (s CatalogSnapshot) Normalize() CatalogSnapshot {
	if s.Products == nil {
		s.Products = []ProductRecord{}
	}
	if s.Categories == nil {
		s.Categories = []CategoryRecord{}
	}
	return s
}

// FindProduct looks a product up by id.
func (s CatalogSnapshot) FindProduct(id string) (ProductRecord, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return ProductRecord{}, false
}

// TransformRequest is the canonical input of a catalog sync.
type TransformRequest struct {
	PageIdentifier   string   `json:"pageUrl"`
	DisplayName      string   `json:"displayName,omitempty"`
	Description      string   `json:"description,omitempty"`
	CustomCategories []string `json:"customCategories,omitempty"`
	Language         string   `json:"language,omitempty"`
	PostLimit        int      `json:"postLimit,omitempty"`
}

// TransformSummary reports the outcome of a successful sync.
type TransformSummary struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	ProductCount  int            `json:"productCount"`
	CategoryCount int            `json:"categoryCount"`
	LastSyncedAt  time.Time      `json:"lastSyncedAt"`
	Store         *StoreMetadata `json:"store"`
}
