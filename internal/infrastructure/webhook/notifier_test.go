package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"PostCatalog/internal/domain"
)

func TestPublishSyncPostsSummary(t *testing.T) {
	t.Parallel()

	var got domain.TransformSummary
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "secret")
	if err := n.PublishSync(context.Background(), domain.TransformSummary{Success: true, ProductCount: 6}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", auth)
	}
	if !got.Success || got.ProductCount != 6 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestPublishSyncFailures(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishSync(context.Background(), domain.TransformSummary{}); err == nil {
		t.Fatal("expected missing endpoint error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewNotifier(srv.URL, "").PublishSync(context.Background(), domain.TransformSummary{}); err == nil {
		t.Fatal("expected status error")
	}
}
