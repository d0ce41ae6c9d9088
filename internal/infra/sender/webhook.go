package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nolofication/internal/domain/entity"
)

// WebhookConfig contains configuration for per-user webhook delivery.
type WebhookConfig struct {
	// Enabled indicates whether webhook delivery is enabled
	Enabled bool

	// Timeout is the HTTP request timeout per webhook call
	Timeout time.Duration
}

// WebhookSender posts notification payloads to user-configured webhook
// URLs. Target URLs are validated against private address ranges at
// registration time, before they ever reach this sender.
type WebhookSender struct {
	config      WebhookConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewWebhookSender creates a webhook sender with the specified configuration.
//
// The rate limiter is set to 5 requests/second with a burst of 10;
// targets are heterogeneous user servers rather than one shared API.
func NewWebhookSender(config WebhookConfig) *WebhookSender {
	return &WebhookSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(5.0, 10),
	}
}

// webhookPayload is the JSON body delivered to the target URL.
type webhookPayload struct {
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	HTMLMessage string          `json:"html_message,omitempty"`
	Type        string          `json:"type"`
	Category    string          `json:"category,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	SentAt      string          `json:"sent_at"`
}

// sendWebhookRequest posts one payload and classifies the response.
func (w *WebhookSender) sendWebhookRequest(ctx context.Context, url string, payload webhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "nolofication-webhook/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	return classifyResponse("webhook target", resp, body)
}

// Send delivers one notification to the given webhook URL.
func (w *WebhookSender) Send(ctx context.Context, url string, content entity.NotificationContent) error {
	if !w.config.Enabled {
		return errors.New("webhook delivery is disabled")
	}
	if url == "" {
		return errors.New("webhook url is empty")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Debug("starting webhook delivery",
		slog.String("request_id", requestID),
		slog.String("url", url))

	if err := w.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload := webhookPayload{
		Title:       content.Title,
		Message:     content.Message,
		HTMLMessage: content.HTMLMessage,
		Type:        content.Type,
		Category:    content.CategoryKey,
		Metadata:    content.Metadata,
		SentAt:      time.Now().UTC().Format(time.RFC3339),
	}

	return sendWithRetry(ctx, "webhook", func(ctx context.Context) error {
		return w.sendWebhookRequest(ctx, url, payload)
	})
}
