package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"PostCatalog/internal/catalog"
	"PostCatalog/internal/categorizer"
	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
	"PostCatalog/internal/product"
	"PostCatalog/internal/scanner"
)

// DefaultLanguage is applied when a request omits its language.
const DefaultLanguage = "bn"

// Run outcomes reported to the recorder.
const (
	OutcomeSuccess         = "success"
	OutcomeInvalidInput    = "invalid_input"
	OutcomeUpstreamFailure = "upstream_failure"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source      ports.PostSource
	Store       ports.SnapshotStore
	Categorizer *categorizer.Categorizer
	Synthesizer *product.Synthesizer
	Indexer     ports.ProductIndexer
	Notifiers   []ports.Notifier
	Recorder    ports.Recorder
	Logger      *slog.Logger
	Clock       func() time.Time

	DefaultLanguage string
	IncludeMedia    bool
	FetchTimeout    time.Duration
}

// Pipeline implements the post-to-catalog transformation.
type Pipeline struct {
	source      ports.PostSource
	store       ports.SnapshotStore
	categorizer *categorizer.Categorizer
	synthesizer *product.Synthesizer
	indexer     ports.ProductIndexer
	notifiers   []ports.Notifier
	recorder    ports.Recorder
	logger      *slog.Logger
	clock       func() time.Time

	defaultLanguage string
	includeMedia    bool
	fetchTimeout    time.Duration
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:          deps.Source,
		store:           deps.Store,
		categorizer:     deps.Categorizer,
		synthesizer:     deps.Synthesizer,
		indexer:         deps.Indexer,
		recorder:        deps.Recorder,
		logger:          deps.Logger,
		clock:           deps.Clock,
		defaultLanguage: deps.DefaultLanguage,
		includeMedia:    deps.IncludeMedia,
		fetchTimeout:    deps.FetchTimeout,
	}
	for _, n := range deps.Notifiers {
		if n != nil {
			p.notifiers = append(p.notifiers, n)
		}
	}
	if p.categorizer == nil {
		p.categorizer = categorizer.New(nil, deps.Logger)
	}
	if p.synthesizer == nil {
		p.synthesizer = product.NewSynthesizer(product.DefaultOptions())
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.defaultLanguage == "" {
		p.defaultLanguage = DefaultLanguage
	}
	return p
}

// Transform fetches posts for a page and replaces the stored catalog with the result.
func (p *Pipeline) Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformSummary, error) {
	started := time.Now()

	page := strings.TrimSpace(req.PageIdentifier)
	if page == "" {
		p.record(OutcomeInvalidInput, 0, 0)
		return domain.TransformSummary{}, domain.InvalidInput("page identifier is required")
	}
	if p.source == nil || p.store == nil {
		return domain.TransformSummary{}, fmt.Errorf("pipeline is not configured")
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = p.defaultLanguage
	}
	limit := scanner.Request{PostLimit: req.PostLimit}.Limit()

	log := p.runLogger(page)
	log.Info("transform started", "limit", limit, "language", language)

	posts, err := p.fetch(ctx, page, limit)
	if err != nil {
		p.record(OutcomeUpstreamFailure, 0, 0)
		log.Error("fetch failed", "error", err)
		return domain.TransformSummary{}, &domain.StageError{Stage: domain.StageFetch, Err: err}
	}
	log.Debug("posts fetched", "count", len(posts))

	stageStart := time.Now()
	categorized := p.categorizer.Categorize(posts, req.CustomCategories, language)
	p.observe("categorize", stageStart)

	stageStart = time.Now()
	products := p.synthesizer.Synthesize(categorized)
	p.observe("synthesize", stageStart)

	syncedAt := p.clock().UTC().Truncate(time.Millisecond)
	snapshot := catalog.BuildSnapshot(catalog.StoreInput{
		PageIdentifier: page,
		DisplayName:    req.DisplayName,
		Description:    req.Description,
	}, products, syncedAt)

	stageStart = time.Now()
	if err := p.store.WriteSnapshot(ctx, snapshot); err != nil {
		p.record(OutcomeUpstreamFailure, 0, 0)
		log.Error("persist failed", "error", err)
		return domain.TransformSummary{}, &domain.StageError{Stage: domain.StagePersist, Err: err}
	}
	p.observe(domain.StagePersist, stageStart)

	summary := domain.TransformSummary{
		Success:       true,
		Message:       fmt.Sprintf("Transformation completed for %s", snapshot.Store.DisplayName),
		ProductCount:  len(snapshot.Products),
		CategoryCount: len(snapshot.Categories),
		LastSyncedAt:  syncedAt,
		Store:         snapshot.Store,
	}

	p.index(ctx, log, snapshot.Products, syncedAt)
	p.notify(ctx, log, summary)
	p.record(OutcomeSuccess, summary.ProductCount, summary.CategoryCount)

	log.Info("transform finished",
		"products", summary.ProductCount,
		"categories", summary.CategoryCount,
		"duration", time.Since(started))

	return summary, nil
}

func (p *Pipeline) fetch(ctx context.Context, page string, limit int) ([]domain.Post, error) {
	fetchCtx := ctx
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}

	started := time.Now()
	posts, err := p.source.FetchPosts(fetchCtx, page, ports.FetchOptions{
		PostLimit:    limit,
		IncludeMedia: p.includeMedia,
	})
	p.observe(domain.StageFetch, started)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (p *Pipeline) index(ctx context.Context, log *slog.Logger, products []domain.ProductRecord, syncedAt time.Time) {
	if p.indexer == nil {
		return
	}
	started := time.Now()
	if err := p.indexer.IndexProducts(ctx, products, syncedAt); err != nil {
		log.Warn("index products failed", "error", err)
		return
	}
	p.observe("index", started)
}

func (p *Pipeline) notify(ctx context.Context, log *slog.Logger, summary domain.TransformSummary) {
	for _, n := range p.notifiers {
		if err := n.PublishSync(ctx, summary); err != nil {
			log.Warn("notify failed", "notifier", fmt.Sprintf("%T", n), "error", err)
		}
	}
}

func (p *Pipeline) runLogger(page string) *slog.Logger {
	log := p.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return log.With("run_id", uuid.NewString(), "page", page)
}

func (p *Pipeline) observe(stage string, started time.Time) {
	if p.recorder != nil {
		p.recorder.ObserveStage(stage, time.Since(started))
	}
}

func (p *Pipeline) record(outcome string, products, categories int) {
	if p.recorder != nil {
		p.recorder.RecordRun(outcome, products, categories)
	}
}
