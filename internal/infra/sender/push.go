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
	"nolofication/internal/usecase/dispatch"
)

// PushConfig contains configuration for push endpoint delivery.
type PushConfig struct {
	// Enabled indicates whether push delivery is enabled
	Enabled bool

	// Timeout is the HTTP request timeout per endpoint
	Timeout time.Duration

	// TTL is how long the push service may hold an undelivered message,
	// in seconds. Zero means deliver-or-drop.
	TTL int
}

// PushSender posts notification payloads to registered push endpoints.
// The endpoint plus key pair registered by the client is treated as an
// opaque bundle; payload encryption is the push service's concern.
type PushSender struct {
	config      PushConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewPushSender creates a push sender with the specified configuration.
//
// The rate limiter is set to 20 requests/second with a burst of 50;
// push services tolerate far higher rates than chat webhooks, and one
// bulk notification can fan out to many endpoints at once.
func NewPushSender(config PushConfig) *PushSender {
	return &PushSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(20.0, 50),
	}
}

// pushPayload is the JSON body posted to a push endpoint.
type pushPayload struct {
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Type     string          `json:"type"`
	Category string          `json:"category,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// sendPushRequest posts the payload to one endpoint and classifies the
// response. 404 and 410 mean the subscription is dead and are reported
// as dispatch.ErrEndpointGone so the delivery breaker can tell a dead
// endpoint apart from a push service outage.
func (p *PushSender) sendPushRequest(ctx context.Context, endpoint string, payload pushPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", fmt.Sprintf("%d", p.config.TTL))

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("push endpoint returned %d", resp.StatusCode),
			Err:        dispatch.ErrEndpointGone,
		}
	}

	return classifyResponse("push service", resp, body)
}

// Send delivers one notification to one push subscription. Dead
// endpoints surface as dispatch.ErrEndpointGone without retrying.
func (p *PushSender) Send(ctx context.Context, sub *entity.PushSubscription, content entity.NotificationContent) error {
	if !p.config.Enabled {
		return errors.New("push delivery is disabled")
	}
	if sub == nil || sub.Endpoint == "" {
		return errors.New("push subscription has no endpoint")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Debug("starting push delivery",
		slog.String("request_id", requestID),
		slog.Int64("subscription_id", sub.ID),
		slog.Int64("user_id", sub.UserID))

	if err := p.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload := pushPayload{
		Title:    content.Title,
		Message:  content.Message,
		Type:     content.Type,
		Category: content.CategoryKey,
		Metadata: content.Metadata,
	}

	return sendWithRetry(ctx, "push", func(ctx context.Context) error {
		return p.sendPushRequest(ctx, sub.Endpoint, payload)
	})
}
