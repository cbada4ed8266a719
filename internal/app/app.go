package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"PostCatalog/internal/categorizer"
	"PostCatalog/internal/config"
	"PostCatalog/internal/domain"
	"PostCatalog/internal/httpapi"
	"PostCatalog/internal/infrastructure/kafka"
	"PostCatalog/internal/infrastructure/metrics"
	"PostCatalog/internal/infrastructure/parser"
	"PostCatalog/internal/infrastructure/scheduler"
	"PostCatalog/internal/infrastructure/search"
	"PostCatalog/internal/infrastructure/storage"
	"PostCatalog/internal/infrastructure/telegram"
	"PostCatalog/internal/infrastructure/webhook"
	"PostCatalog/internal/logging"
	"PostCatalog/internal/ports"
	"PostCatalog/internal/product"
	"PostCatalog/internal/scanner"
	"PostCatalog/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	catalog   *usecase.CatalogService
	scheduler *usecase.Scheduler
	recorder  *metrics.Recorder
	closers   []func() error
}

// New builds the application; external stores are connected eagerly.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	store, err := a.newStore(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewMockScanner(nil))
	registry.Register(parser.NewHTMLScanner(nil, baseLogger.With("component", "scanner.html")))

	var sourceOptions map[string]string
	if cfg.Source.HTMLPath != "" {
		sourceOptions = map[string]string{"path": cfg.Source.HTMLPath}
	}
	if _, err := registry.Resolve(cfg.Source.Scanner); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("source: %w (available: %v)", err, registry.Names())
	}
	source := parser.NewStrategySource(registry, cfg.Source.Scanner, sourceOptions, baseLogger.With("component", "source"))

	a.recorder = metrics.NewRecorder()

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Store:       store,
		Categorizer: categorizer.New(nil, baseLogger.With("component", "categorizer")),
		Synthesizer: product.NewSynthesizer(product.Options{
			ExtractPricing:  cfg.Pipeline.PricingEnabled(),
			DefaultCurrency: cfg.Pipeline.DefaultCurrency,
		}),
		Indexer:         a.newIndexer(cfg.Search),
		Notifiers:       a.newNotifiers(cfg.Notifications),
		Recorder:        a.recorder,
		Logger:          baseLogger.With("component", "pipeline"),
		DefaultLanguage: cfg.Pipeline.DefaultLanguage,
		IncludeMedia:    cfg.Pipeline.MediaEnabled(),
		FetchTimeout:    cfg.Pipeline.FetchTimeout,
	})
	a.catalog = usecase.NewCatalogService(store)

	if len(cfg.Scheduler.Pages) > 0 {
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), cfg.Scheduler.RunOnStart)
		a.scheduler = usecase.NewScheduler(driver, a.pipeline, scheduledRequests(cfg.Scheduler.Pages), baseLogger.With("component", "scheduler"))
	}

	return a, nil
}

func (a *Application) newStore(ctx context.Context, cfg config.StorageConfig) (ports.SnapshotStore, error) {
	log := a.logger.With("component", "storage", "driver", cfg.Driver)

	switch cfg.Driver {
	case config.DriverFile, "":
		return storage.NewFileStore(cfg.Path, log), nil
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		store := storage.NewPostgresStore(db, cfg.Table, log)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return storage.NewRedisStore(client, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func (a *Application) newIndexer(cfg config.SearchConfig) ports.ProductIndexer {
	if !cfg.Enabled() {
		return nil
	}
	indexer, err := search.NewProductIndexer(search.Config{
		Addresses: cfg.Addresses,
		Index:     cfg.Index,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}, a.logger.With("component", "search"))
	if err != nil {
		a.logger.Warn("search indexing disabled", "error", err)
		return nil
	}
	return indexer
}

func (a *Application) newNotifiers(cfg config.NotificationConfig) []ports.Notifier {
	var notifiers []ports.Notifier
	if cfg.Telegram.Enabled() {
		notifiers = append(notifiers, telegram.NewNotifier(cfg.Telegram.APIBase, cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			a.logger.Warn("kafka notifications disabled", "error", err)
		} else {
			publisher := kafka.NewPublisher(producer, cfg.Kafka.Topic, a.logger.With("component", "kafka"))
			a.closers = append(a.closers, publisher.Close)
			notifiers = append(notifiers, publisher)
		}
	}
	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, webhook.NewNotifier(cfg.Webhook.URL, cfg.Webhook.APIKey))
	}
	return notifiers
}

func scheduledRequests(pages []config.PageConfig) []domain.TransformRequest {
	requests := make([]domain.TransformRequest, 0, len(pages))
	for _, page := range pages {
		requests = append(requests, domain.TransformRequest{
			PageIdentifier:   page.PageURL,
			DisplayName:      page.DisplayName,
			Description:      page.Description,
			CustomCategories: page.CustomCategories,
			Language:         page.Language,
			PostLimit:        page.PostLimit,
		})
	}
	return requests
}

// Transform runs a single sync.
func (a *Application) Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformSummary, error) {
	return a.pipeline.Transform(ctx, req)
}

// Snapshot returns the stored catalog document.
func (a *Application) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	return a.catalog.Snapshot(ctx)
}

// Handler exposes the HTTP API.
func (a *Application) Handler() http.Handler {
	return httpapi.NewRouter(httpapi.Options{
		Transformer: a.pipeline,
		Catalog:     a.catalog,
		Metrics:     a.recorder.Handler(),
		CORSOrigins: a.cfg.Server.CORSOrigins,
		Logger:      a.logger.With("component", "http"),
	})
}

// Serve runs the HTTP API and the scheduler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("products API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.scheduler != nil {
		if err := a.scheduler.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("products API stopped")
	return nil
}

// Close releases store connections and producers.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
