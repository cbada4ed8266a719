package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/usecase"
)

type handler struct {
	transformer Transformer
	catalog     CatalogReader
	logger      *slog.Logger
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "postcatalog"})
}

func (h *handler) snapshot(c *gin.Context) {
	snapshot, err := h.catalog.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Unable to load catalog")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *handler) store(c *gin.Context) {
	store, err := h.catalog.Store(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Unable to load store information")
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *handler) categories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Unable to load categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *handler) products(c *gin.Context) {
	filter := usecase.ProductFilter{
		CategoryID: c.Query("categoryId"),
		Search:     c.Query("search"),
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(c.Query("limit"))); err == nil && limit > 0 {
		filter.Limit = limit
	}

	products, err := h.catalog.Products(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, "Unable to load products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handler) product(c *gin.Context) {
	product, err := h.catalog.Product(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		h.fail(c, err, "Unable to load product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *handler) transform(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	req := parseTransformRequest(gjson.ParseBytes(body))
	if strings.TrimSpace(req.PageIdentifier) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_url is required"})
		return
	}

	summary, err := h.transformer.Transform(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Transform failed")
		return
	}

	snapshot, err := h.catalog.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Unable to load catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       summary.Success,
		"message":       summary.Message,
		"productCount":  summary.ProductCount,
		"categoryCount": summary.CategoryCount,
		"store":         snapshot.Store,
		"categories":    snapshot.Categories,
		"products":      snapshot.Products,
		"lastSyncedAt":  snapshot.LastSyncedAt,
	})
}

// parseTransformRequest accepts both snake_case and camelCase field names.
func parseTransformRequest(body gjson.Result) domain.TransformRequest {
	req := domain.TransformRequest{
		PageIdentifier: firstString(body, "page_url", "pageUrl"),
		DisplayName:    firstString(body, "display_name", "displayName"),
		Description:    firstString(body, "description"),
		Language:       firstString(body, "language"),
	}

	for _, key := range []string{"custom_categories", "customCategories"} {
		field := body.Get(key)
		if !field.IsArray() {
			continue
		}
		for _, item := range field.Array() {
			if item.Type == gjson.String {
				req.CustomCategories = append(req.CustomCategories, item.String())
			}
		}
		break
	}

	for _, key := range []string{"post_limit", "postLimit"} {
		if field := body.Get(key); field.Type == gjson.Number {
			req.PostLimit = int(field.Int())
			break
		}
	}

	return req
}

func firstString(body gjson.Result, keys ...string) string {
	for _, key := range keys {
		if field := body.Get(key); field.Type == gjson.String {
			return field.String()
		}
	}
	return ""
}

func (h *handler) fail(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if h.logger != nil {
		h.logger.Error(message, "error", err, "status", status)
	}

	payload := gin.H{"error": message}
	if status == http.StatusBadRequest || status == http.StatusBadGateway {
		payload["details"] = err.Error()
	}
	c.JSON(status, payload)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
