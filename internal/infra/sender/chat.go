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

// ChatConfig contains configuration for Discord direct message delivery.
type ChatConfig struct {
	// Enabled indicates whether chat delivery is enabled
	Enabled bool

	// BotToken is the Discord bot token used for authentication
	BotToken string

	// APIBaseURL is the Discord REST API base. Defaults to the v10 API
	// when empty; overridable for tests.
	APIBaseURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration
}

const defaultDiscordAPIBase = "https://discord.com/api/v10"

// ChatSender delivers notifications as Discord direct messages. Sending
// a DM is a two-step exchange: open (or reuse) the DM channel for the
// recipient, then post the message into it.
type ChatSender struct {
	config      ChatConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewChatSender creates a new ChatSender with the specified configuration.
//
// The rate limiter is set to 0.5 requests/second with burst of 3
// (Discord allows 30 requests per minute per route).
func NewChatSender(config ChatConfig) *ChatSender {
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultDiscordAPIBase
	}
	return &ChatSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
	}
}

// discordEmbed represents a Discord embed message.
type discordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Footer      discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string             `json:"timestamp"`
}

// discordEmbedFooter represents the footer of a Discord embed.
type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

// discordMessagePayload is the body posted to the channel messages route.
type discordMessagePayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// discordChannel is the relevant slice of the DM channel resource.
type discordChannel struct {
	ID string `json:"id"`
}

const (
	// Discord limits
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 4096
	truncationSuffix          = "..."

	// Embed colors per notification severity
	colorInfo    = 5793266  // #5865F2 blurple
	colorSuccess = 5763719  // #57F287 green
	colorWarning = 16705372 // #FEE75C yellow
	colorError   = 15548997 // #ED4245 red
)

// embedColor maps the notification type onto a Discord embed color.
func embedColor(notificationType string) int {
	switch notificationType {
	case entity.TypeSuccess:
		return colorSuccess
	case entity.TypeWarning:
		return colorWarning
	case entity.TypeError:
		return colorError
	default:
		return colorInfo
	}
}

// buildEmbedPayload creates the DM message payload for one notification.
func (c *ChatSender) buildEmbedPayload(content entity.NotificationContent, now time.Time) discordMessagePayload {
	title := content.Title
	if len(title) > maxEmbedTitleLength {
		title = title[:maxEmbedTitleLength]
	}

	description := truncateText(content.Message, maxEmbedDescriptionLength, truncationSuffix)

	embed := discordEmbed{
		Title:       title,
		Description: description,
		Color:       embedColor(content.Type),
		Timestamp:   now.Format(time.RFC3339),
	}
	if content.CategoryKey != "" {
		embed.Footer = discordEmbedFooter{Text: content.CategoryKey}
	}

	return discordMessagePayload{Embeds: []discordEmbed{embed}}
}

// postJSON performs one authenticated Discord API call and classifies
// the response. On success the body is decoded into out when non-nil.
func (c *ChatSender) postJSON(ctx context.Context, url string, payload any, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.config.BotToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if err := classifyResponse("Discord API", resp, body); err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// openDMChannel resolves the DM channel for a recipient. Discord reuses
// the existing channel when one is already open, so this is idempotent.
func (c *ChatSender) openDMChannel(ctx context.Context, recipientID string) (string, error) {
	var channel discordChannel
	payload := map[string]string{"recipient_id": recipientID}
	if err := c.postJSON(ctx, c.config.APIBaseURL+"/users/@me/channels", payload, &channel); err != nil {
		return "", fmt.Errorf("open dm channel: %w", err)
	}
	if channel.ID == "" {
		return "", errors.New("open dm channel: response carried no channel id")
	}
	return channel.ID, nil
}

// SendDM delivers one notification as a direct message to the Discord
// user identified by destinationID.
func (c *ChatSender) SendDM(ctx context.Context, destinationID string, content entity.NotificationContent) error {
	if !c.config.Enabled {
		return errors.New("chat delivery is disabled")
	}
	if destinationID == "" {
		return errors.New("chat destination id is empty")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Debug("starting chat delivery",
		slog.String("request_id", requestID),
		slog.String("destination_id", destinationID))

	if err := c.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	payload := c.buildEmbedPayload(content, time.Now().UTC())

	return sendWithRetry(ctx, "discord", func(ctx context.Context) error {
		channelID, err := c.openDMChannel(ctx, destinationID)
		if err != nil {
			return err
		}
		url := fmt.Sprintf("%s/channels/%s/messages", c.config.APIBaseURL, channelID)
		return c.postJSON(ctx, url, payload, nil)
	})
}
