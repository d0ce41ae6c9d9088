package dispatch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"nolofication/internal/domain/entity"
	"nolofication/internal/repository"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "request_id"

// sendTimeout bounds one channel delivery attempt.
const sendTimeout = 30 * time.Second

// Service delivers one notification across all enabled channels.
type Service interface {
	// Dispatch sends the content to every channel the resolved
	// preferences enable, in parallel, and writes the history row
	// recording which channels accepted it.
	//
	// A channel transport failure never fails the dispatch as a whole; it
	// surfaces as false in the returned ChannelResult. The returned error
	// is non-nil only when the history row cannot be written.
	Dispatch(ctx context.Context, user *entity.User, siteID int64, content entity.NotificationContent, prefs entity.ResolvedPreferences) (entity.ChannelResult, error)
}

type service struct {
	email   EmailSender
	push    PushSender
	chat    ChatSender
	webhook WebhookSender

	subscriptions repository.PushSubscriptionRepository
	history       repository.NotificationRepository
}

// NewService creates a dispatcher over the four channel senders.
// Any sender may be nil; its channel then always resolves to false.
func NewService(
	email EmailSender,
	push PushSender,
	chat ChatSender,
	webhook WebhookSender,
	subscriptions repository.PushSubscriptionRepository,
	history repository.NotificationRepository,
) Service {
	return &service{
		email:         email,
		push:          push,
		chat:          chat,
		webhook:       webhook,
		subscriptions: subscriptions,
		history:       history,
	}
}

func (s *service) Dispatch(ctx context.Context, user *entity.User, siteID int64, content entity.NotificationContent, prefs entity.ResolvedPreferences) (entity.ChannelResult, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}

	slog.Info("dispatching notification",
		slog.String("request_id", requestID),
		slog.Int64("user_id", user.ID),
		slog.Int64("site_id", siteID),
		slog.String("title", content.Title),
		slog.String("type", content.Type))

	var result entity.ChannelResult

	// Channels are independent; one failing transport must not delay or
	// abort the others. Goroutines never return errors, so g.Wait() only
	// synchronizes.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result.Email = s.sendEmail(gctx, requestID, user, prefs, content)
		return nil
	})
	g.Go(func() error {
		result.Push = s.sendPush(gctx, requestID, user, prefs, content)
		return nil
	})
	g.Go(func() error {
		result.ChatDM = s.sendChat(gctx, requestID, prefs, content)
		return nil
	})
	g.Go(func() error {
		result.Webhook = s.sendWebhook(gctx, requestID, prefs, content)
		return nil
	})
	_ = g.Wait()

	row := &entity.Notification{
		UserID:         user.ID,
		SiteID:         siteID,
		Title:          content.Title,
		Message:        content.Message,
		Type:           content.Type,
		CategoryKey:    content.CategoryKey,
		SentViaEmail:   result.Email,
		SentViaPush:    result.Push,
		SentViaChat:    result.ChatDM,
		SentViaWebhook: result.Webhook,
	}
	if err := s.history.Create(ctx, row); err != nil {
		slog.Error("history write failed after dispatch",
			slog.String("request_id", requestID),
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
		return result, err
	}

	slog.Info("notification dispatched",
		slog.String("request_id", requestID),
		slog.Int64("user_id", user.ID),
		slog.Bool("email", result.Email),
		slog.Bool("push", result.Push),
		slog.Bool("chat", result.ChatDM),
		slog.Bool("webhook", result.Webhook))
	return result, nil
}

func (s *service) sendEmail(ctx context.Context, requestID string, user *entity.User, prefs entity.ResolvedPreferences, content entity.NotificationContent) bool {
	if !prefs.Email || s.email == nil {
		RecordSkipped(ChannelEmail, "disabled")
		return false
	}
	if !user.HasEmail() {
		RecordSkipped(ChannelEmail, "unaddressable")
		return false
	}

	return s.attempt(ctx, requestID, ChannelEmail, func(ctx context.Context) error {
		return s.email.Send(ctx, user.Email, content)
	})
}

func (s *service) sendPush(ctx context.Context, requestID string, user *entity.User, prefs entity.ResolvedPreferences, content entity.NotificationContent) bool {
	if !prefs.Push || s.push == nil {
		RecordSkipped(ChannelPush, "disabled")
		return false
	}

	subs, err := s.subscriptions.ListByUser(ctx, user.ID)
	if err != nil {
		slog.Warn("push subscription lookup failed",
			slog.String("request_id", requestID),
			slog.Int64("user_id", user.ID),
			slog.Any("error", err))
		return false
	}
	if len(subs) == 0 {
		RecordSkipped(ChannelPush, "unaddressable")
		return false
	}

	// Push succeeds if at least one endpoint accepts the message. Dead
	// endpoints count as failed attempts; subscription pruning is a
	// registration concern, never done here.
	delivered := false
	for _, sub := range subs {
		sub := sub
		ok := s.attempt(ctx, requestID, ChannelPush, func(ctx context.Context) error {
			return s.push.Send(ctx, sub, content)
		})
		if ok {
			delivered = true
			_ = s.subscriptions.TouchUsedAt(ctx, sub.ID, time.Now().UTC())
		}
	}
	return delivered
}

func (s *service) sendChat(ctx context.Context, requestID string, prefs entity.ResolvedPreferences, content entity.NotificationContent) bool {
	if !prefs.ChatDM || s.chat == nil {
		RecordSkipped(ChannelChat, "disabled")
		return false
	}
	if prefs.ChatDestinationID == "" {
		RecordSkipped(ChannelChat, "unaddressable")
		return false
	}

	return s.attempt(ctx, requestID, ChannelChat, func(ctx context.Context) error {
		return s.chat.SendDM(ctx, prefs.ChatDestinationID, content)
	})
}

func (s *service) sendWebhook(ctx context.Context, requestID string, prefs entity.ResolvedPreferences, content entity.NotificationContent) bool {
	if !prefs.Webhook || s.webhook == nil {
		RecordSkipped(ChannelWebhook, "disabled")
		return false
	}
	if prefs.WebhookURL == "" {
		RecordSkipped(ChannelWebhook, "unaddressable")
		return false
	}

	return s.attempt(ctx, requestID, ChannelWebhook, func(ctx context.Context) error {
		return s.webhook.Send(ctx, prefs.WebhookURL, content)
	})
}

// attempt runs one bounded send and maps its outcome to the boolean
// channel contract, recording metrics and logging the failure detail.
func (s *service) attempt(ctx context.Context, requestID, channel string, send func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	RecordDispatch(channel)
	start := time.Now()
	err := send(ctx)
	duration := time.Since(start)

	if err != nil {
		RecordFailure(channel, duration)
		slog.Warn("channel delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return false
	}

	RecordSuccess(channel, duration)
	slog.Debug("channel delivery succeeded",
		slog.String("request_id", requestID),
		slog.String("channel", channel),
		slog.Duration("send_duration", duration))
	return true
}
