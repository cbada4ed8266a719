package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/usecase"
)

// Transformer runs a catalog sync.
type Transformer interface {
	Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformSummary, error)
}

// CatalogReader answers read-side queries.
type CatalogReader interface {
	Snapshot(ctx context.Context) (domain.CatalogSnapshot, error)
	Store(ctx context.Context) (*domain.StoreMetadata, error)
	Categories(ctx context.Context) ([]domain.CategoryRecord, error)
	Products(ctx context.Context, filter usecase.ProductFilter) ([]domain.ProductRecord, error)
	Product(ctx context.Context, id string) (domain.ProductRecord, error)
}

// Options configures the router.
type Options struct {
	Transformer Transformer
	Catalog     CatalogReader
	Metrics     http.Handler
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the HTTP handler with CORS, request logging and all routes.
func NewRouter(opts Options) http.Handler {
	router := gin.New()
	router.Use(requestLogger(opts.Logger))
	router.Use(gin.Recovery())

	h := &handler{
		transformer: opts.Transformer,
		catalog:     opts.Catalog,
		logger:      opts.Logger,
	}

	router.GET("/healthz", h.health)
	router.GET("/catalog", h.snapshot)
	router.GET("/store", h.store)
	router.GET("/categories", h.categories)
	router.GET("/products", h.products)
	router.GET("/products/:id", h.product)
	if opts.Transformer != nil {
		router.POST("/transform", h.transform)
	}
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	return corsMiddleware(opts.CORSOrigins).Handler(router)
}

func corsMiddleware(origins []string) *cors.Cors {
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:         int((12 * time.Hour).Seconds()),
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	} else {
		opts.AllowedOrigins = []string{"*"}
	}
	return cors.New(opts)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		if log == nil {
			return
		}
		log.Info("HTTP request",
			"method", method,
			"path", path,
			"status_code", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}
