package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PostCatalog/internal/domain"
	"PostCatalog/internal/ports"
)

// DefaultAPIBase is the public Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// Notifier sends sync summaries to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier; blank apiBase means the public API.
func NewNotifier(apiBase, botToken, chatID string) *Notifier {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Notifier{
		apiBase:  strings.TrimSuffix(apiBase, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishSync posts a Markdown summary of the finished sync.
func (n *Notifier) PublishSync(ctx context.Context, summary domain.TransformSummary) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatSummary(summary))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatSummary renders the chat message for a sync.
func FormatSummary(summary domain.TransformSummary) string {
	var b strings.Builder
	b.WriteString("*Catalog synced*\n")
	if summary.Store != nil {
		fmt.Fprintf(&b, "%s (%s)\n", markdownEscaper.Replace(summary.Store.DisplayName), markdownEscaper.Replace(summary.Store.PageURL))
	}
	fmt.Fprintf(&b, "Products: %d\nCategories: %d\n", summary.ProductCount, summary.CategoryCount)
	fmt.Fprintf(&b, "Synced at: %s", summary.LastSyncedAt.UTC().Format(time.RFC3339))
	return b.String()
}
