package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/tidwall/gjson"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// DefaultIndex receives product documents when no index is configured.
const DefaultIndex = "postcatalog-products"

// Config selects the cluster and index.
type Config struct {
	Addresses  []string
	Index      string
	Username   string
	Password   string
	MaxRetries int
}

// ProductIndexer mirrors each synced catalog into Elasticsearch.
type ProductIndexer struct {
	client *es.Client
	index  string
	logger *slog.Logger
}

var _ ports.ProductIndexer = (*ProductIndexer)(nil)

type productDocument struct {
	domain.ProductRecord
	SyncedAt time.Time `json:"syncedAt"`
}

// NewProductIndexer builds an Elasticsearch client from cfg.
func NewProductIndexer(cfg Config, logger *slog.Logger) (*ProductIndexer, error) {
	addresses := make([]string, 0, len(cfg.Addresses))
	for _, addr := range cfg.Addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			addr = "http://" + addr
		}
		addresses = append(addresses, addr)
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch addresses are not configured")
	}

	clientConfig := es.Config{
		Addresses:  addresses,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.Username != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}

	return &ProductIndexer{client: client, index: index, logger: logger}, nil
}

// IndexProducts bulk-upserts products and removes documents from earlier syncs.
func (p *ProductIndexer) IndexProducts(ctx context.Context, products []domain.ProductRecord, syncedAt time.Time) error {
	if len(products) > 0 {
		if err := p.bulkIndex(ctx, products, syncedAt); err != nil {
			return err
		}
	}
	return p.deleteStale(ctx, syncedAt)
}

func (p *ProductIndexer) bulkIndex(ctx context.Context, products []domain.ProductRecord, syncedAt time.Time) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, product := range products {
		action := map[string]map[string]string{"index": {"_id": product.ID}}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := enc.Encode(productDocument{ProductRecord: product, SyncedAt: syncedAt.UTC()}); err != nil {
			return fmt.Errorf("encode product %s: %w", product.ID, err)
		}
	}

	res, err := p.client.Bulk(
		&body,
		p.client.Bulk.WithContext(ctx),
		p.client.Bulk.WithIndex(p.index),
		p.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read bulk response: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("bulk returned error [%d]: %s", res.StatusCode, string(payload))
	}

	result := gjson.ParseBytes(payload)
	if result.Get("errors").Bool() {
		reason := result.Get("items.#.index.error.reason|0").String()
		return fmt.Errorf("bulk indexing rejected documents: %s", reason)
	}

	if p.logger != nil {
		p.logger.Debug("products indexed", "index", p.index, "count", len(products))
	}
	return nil
}

func (p *ProductIndexer) deleteStale(ctx context.Context, syncedAt time.Time) error {
	query := map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"syncedAt": map[string]any{"lt": syncedAt.UTC().Format(time.RFC3339Nano)},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("encode delete query: %w", err)
	}

	res, err := p.client.DeleteByQuery(
		[]string{p.index},
		bytes.NewReader(body),
		p.client.DeleteByQuery.WithContext(ctx),
		p.client.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return fmt.Errorf("delete stale products: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	// a missing index only means nothing was indexed yet
	if res.StatusCode == 404 {
		return nil
	}
	if res.IsError() {
		payload, _ := io.ReadAll(res.Body)
		return fmt.Errorf("delete stale returned error [%d]: %s", res.StatusCode, string(payload))
	}

	deleted := int64(0)
	if payload, err := io.ReadAll(res.Body); err == nil {
		deleted = gjson.GetBytes(payload, "deleted").Int()
	}
	if p.logger != nil {
		p.logger.Debug("stale products removed", "index", p.index, "deleted", deleted)
	}
	return nil
}
