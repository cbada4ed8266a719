package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// Notifier posts sync summaries as JSON to an HTTP endpoint.
type Notifier struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a reusable HTTP client; apiKey is sent as a bearer token when set.
func NewNotifier(endpoint, apiKey string) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// PublishSync delivers the summary body.
func (n *Notifier) PublishSync(ctx context.Context, summary domain.TransformSummary) error {
	if n.endpoint == "" {
		return fmt.Errorf("webhook endpoint is not configured")
	}
	return n.post(ctx, summary)
}

func (n *Notifier) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}
	return nil
}
