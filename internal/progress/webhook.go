package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cuesynth/internal/services"
)

const userAgent = "cuesynth/0.1.0"

// WebhookSink POSTs each event as a JSON document.
type WebhookSink struct {
	endpoint string
	client   *http.Client
}

func NewWebhookSink(endpoint string, client *http.Client) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{endpoint: strings.TrimSpace(endpoint), client: client}
}

func (w *WebhookSink) Publish(ctx context.Context, event Event) error {
	if w == nil || w.endpoint == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode progress event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build progress request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrCollaborator, event.Kind, "publish progress", "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrCollaborator, event.Kind, "publish progress",
			fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
