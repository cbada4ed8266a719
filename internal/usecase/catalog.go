package usecase

import (
	"context"
	"fmt"
	"strings"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// ProductFilter narrows the product listing.
type ProductFilter struct {
	CategoryID string
	Search     string
	Limit      int
}

// CatalogService answers read-side queries from the stored snapshot.
type CatalogService struct {
	store ports.SnapshotStore
}

// NewCatalogService wires the snapshot store.
func NewCatalogService(store ports.SnapshotStore) *CatalogService {
	return &CatalogService{store: store}
}

// Snapshot returns the whole stored document.
func (s *CatalogService) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	snapshot, err := s.store.ReadSnapshot(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	return snapshot.Normalize(), nil
}

// Store returns the store metadata, nil before the first sync.
func (s *CatalogService) Store(ctx context.Context) (*domain.StoreMetadata, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Store, nil
}

// Categories returns the stored category list.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.CategoryRecord, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Categories, nil
}

// Products applies the category filter, then the search term, then the limit.
func (s *CatalogService) Products(ctx context.Context, filter ProductFilter) ([]domain.ProductRecord, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	categoryID := strings.TrimSpace(filter.CategoryID)
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	products := make([]domain.ProductRecord, 0, len(snapshot.Products))
	for _, p := range snapshot.Products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if term != "" && !matchesTerm(p, term) {
			continue
		}
		products = append(products, p)
	}

	if filter.Limit > 0 && len(products) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

// Product looks up a single product by id.
func (s *CatalogService) Product(ctx context.Context, id string) (domain.ProductRecord, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return domain.ProductRecord{}, err
	}
	p, ok := snapshot.FindProduct(id)
	if !ok {
		return domain.ProductRecord{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func matchesTerm(p domain.ProductRecord, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) || strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
