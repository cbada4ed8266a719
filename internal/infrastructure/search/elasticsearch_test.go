package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"PostCatalog/internal/domain"
)

type fakeCluster struct {
	mu         sync.Mutex
	bulkBody   string
	deleteBody string
	bulkReply  string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		f.bulkBody = string(body)
		reply := f.bulkReply
		if reply == "" {
			reply = `{"took":1,"errors":false,"items":[]}`
		}
		_, _ = w.Write([]byte(reply))
	case strings.HasSuffix(r.URL.Path, "/_delete_by_query"):
		f.deleteBody = string(body)
		_, _ = w.Write([]byte(`{"deleted":2}`))
	default:
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`))
	}
}

func newTestIndexer(t *testing.T, cluster *fakeCluster) *ProductIndexer {
	t.Helper()

	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	indexer, err := NewProductIndexer(Config{Addresses: []string{srv.URL}, Index: "products"}, nil)
	require.NoError(t, err)
	return indexer
}

func TestIndexProductsSendsBulkAndStaleCleanup(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{}
	indexer := newTestIndexer(t, cluster)
	synced := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	products := []domain.ProductRecord{
		{ID: "prod-1", Title: "Saree", CategoryID: "fashion-apparel", Tags: []string{"fashion"}},
		{ID: "prod-2", Title: "Earbuds", CategoryID: "electronics"},
	}

	require.NoError(t, indexer.IndexProducts(context.Background(), products, synced))

	lines := strings.Split(strings.TrimSpace(cluster.bulkBody), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "prod-1", gjson.Get(lines[0], "index._id").String())
	assert.Equal(t, "Saree", gjson.Get(lines[1], "title").String())
	assert.Equal(t, "2024-06-01T12:00:00Z", gjson.Get(lines[1], "syncedAt").String())
	assert.Equal(t, "prod-2", gjson.Get(lines[2], "index._id").String())

	assert.Equal(t, "2024-06-01T12:00:00Z", gjson.Get(cluster.deleteBody, "query.range.syncedAt.lt").String())
}

func TestIndexProductsSurfacesRejectedDocuments(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{
		bulkReply: `{"errors":true,"items":[{"index":{"_id":"prod-1","status":400,"error":{"reason":"mapper_parsing_exception"}}}]}`,
	}
	indexer := newTestIndexer(t, cluster)

	err := indexer.IndexProducts(context.Background(), []domain.ProductRecord{{ID: "prod-1"}}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
	assert.Empty(t, cluster.deleteBody)
}

func TestIndexProductsEmptyCatalogOnlyCleansUp(t *testing.T) {
	t.Parallel()

	cluster := &fakeCluster{}
	indexer := newTestIndexer(t, cluster)

	require.NoError(t, indexer.IndexProducts(context.Background(), nil, time.Now()))
	assert.Empty(t, cluster.bulkBody)
	assert.NotEmpty(t, cluster.deleteBody)
}

func TestNewProductIndexerRequiresAddresses(t *testing.T) {
	t.Parallel()

	_, err := NewProductIndexer(Config{Addresses: []string{" "}}, nil)
	require.Error(t, err)
}
