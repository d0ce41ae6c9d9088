package sender

import (
	"context"
	"log/slog"
	"os"
	"time"

	envconfig "nolofication/internal/pkg/config"
	"nolofication/internal/usecase/dispatch"
)

// SendersFromEnv builds the four channel senders from environment
// configuration. A disabled or misconfigured channel gets a no-op
// sender; enabled channels are wrapped with delivery circuit breakers.
func SendersFromEnv(logger *slog.Logger) (dispatch.EmailSender, dispatch.PushSender, dispatch.ChatSender, dispatch.WebhookSender) {
	return EmailSenderFromEnv(logger), PushSenderFromEnv(logger), ChatSenderFromEnv(logger), WebhookSenderFromEnv(logger)
}

// EmailSenderFromEnv creates the SES email sender.
//
// Environment variables:
//   - EMAIL_ENABLED: Boolean flag to enable email delivery (default: false)
//   - SES_REGION: AWS region of the SES identity (default: us-east-1)
//   - EMAIL_FROM_ADDRESS: Verified sender address (required if enabled)
//   - EMAIL_FROM_NAME: Display name for the From header (default: Nolofication)
func EmailSenderFromEnv(logger *slog.Logger) dispatch.EmailSender {
	if !envconfig.LoadEnvBool("EMAIL_ENABLED", false).Value.(bool) {
		logger.Info("email channel disabled")
		return NewNoOpSender()
	}

	cfg := EmailConfig{
		Enabled:     true,
		Region:      envconfig.LoadEnvString("SES_REGION", "us-east-1"),
		FromAddress: os.Getenv("EMAIL_FROM_ADDRESS"),
		FromName:    envconfig.LoadEnvString("EMAIL_FROM_NAME", "Nolofication"),
	}
	if cfg.FromAddress == "" {
		logger.Warn("EMAIL_FROM_ADDRESS is empty, disabling email channel")
		return NewNoOpSender()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	emailSender, err := NewEmailSender(ctx, cfg)
	if err != nil {
		logger.Warn("failed to initialize SES client, disabling email channel", slog.Any("error", err))
		return NewNoOpSender()
	}

	logger.Info("email channel initialized",
		slog.String("region", cfg.Region),
		slog.String("from", cfg.FromAddress))
	return NewBreakerEmailSender(emailSender)
}

// PushSenderFromEnv creates the push endpoint sender.
//
// Environment variables:
//   - PUSH_ENABLED: Boolean flag to enable push delivery (default: false)
//   - PUSH_TTL: Seconds the push service may hold an undelivered message (default: 0)
func PushSenderFromEnv(logger *slog.Logger) dispatch.PushSender {
	if !envconfig.LoadEnvBool("PUSH_ENABLED", false).Value.(bool) {
		logger.Info("push channel disabled")
		return NewNoOpPushSender()
	}

	ttl := envconfig.LoadEnvInt("PUSH_TTL", 0, nil)
	cfg := PushConfig{
		Enabled: true,
		Timeout: 10 * time.Second,
		TTL:     ttl.Value.(int),
	}

	logger.Info("push channel initialized", slog.Int("ttl", cfg.TTL))
	return NewBreakerPushSender(NewPushSender(cfg))
}

// ChatSenderFromEnv creates the Discord direct message sender.
//
// Environment variables:
//   - CHAT_ENABLED: Boolean flag to enable chat delivery (default: false)
//   - DISCORD_BOT_TOKEN: Discord bot token (required if enabled)
func ChatSenderFromEnv(logger *slog.Logger) dispatch.ChatSender {
	if !envconfig.LoadEnvBool("CHAT_ENABLED", false).Value.(bool) {
		logger.Info("chat channel disabled")
		return NewNoOpSender()
	}

	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		logger.Warn("DISCORD_BOT_TOKEN is empty, disabling chat channel")
		return NewNoOpSender()
	}

	cfg := ChatConfig{
		Enabled:  true,
		BotToken: token,
		Timeout:  10 * time.Second,
	}

	logger.Info("chat channel initialized")
	return NewBreakerChatSender(NewChatSender(cfg))
}

// WebhookSenderFromEnv creates the per-user webhook sender.
//
// Environment variables:
//   - WEBHOOK_ENABLED: Boolean flag to enable webhook delivery (default: false)
func WebhookSenderFromEnv(logger *slog.Logger) dispatch.WebhookSender {
	if !envconfig.LoadEnvBool("WEBHOOK_ENABLED", false).Value.(bool) {
		logger.Info("webhook channel disabled")
		return NewNoOpSender()
	}

	cfg := WebhookConfig{
		Enabled: true,
		Timeout: 10 * time.Second,
	}

	logger.Info("webhook channel initialized")
	return NewBreakerWebhookSender(NewWebhookSender(cfg))
}
