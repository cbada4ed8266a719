package ports

import (
	"context"
	"time"

	"PostCatalog/internal/domain"
)

// FetchOptions bounds a single post fetch.
type FetchOptions struct {
	PostLimit    int
	IncludeMedia bool
}

// PostSource supplies raw posts for a page identifier.
type PostSource interface {
	FetchPosts(ctx context.Context, pageIdentifier string, opts FetchOptions) ([]domain.Post, error)
}

// SnapshotStore persists the catalog snapshot as one whole document.
type SnapshotStore interface {
	ReadSnapshot(ctx context.Context) (domain.CatalogSnapshot, error)
	WriteSnapshot(ctx context.Context, snapshot domain.CatalogSnapshot) error
}

// ProductIndexer mirrors synced products into a search backend.
type ProductIndexer interface {
	IndexProducts(ctx context.Context, products []domain.ProductRecord, syncedAt time.Time) error
}

// Notifier announces completed syncs (Telegram, Kafka, etc.).
type Notifier interface {
	PublishSync(ctx context.Context, summary domain.TransformSummary) error
}

// Recorder collects pipeline metrics.
type Recorder interface {
	ObserveStage(stage string, elapsed time.Duration)
	RecordRun(outcome string, products, categories int)
}

// Scheduler controls when recurring syncs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
