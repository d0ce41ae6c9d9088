package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"

	"nolofication/internal/domain/entity"
)

// EmailConfig contains configuration for SES email delivery.
type EmailConfig struct {
	// Enabled indicates whether email delivery is enabled
	Enabled bool

	// Region is the AWS region the SES identity lives in
	Region string

	// FromAddress is the verified sender address
	FromAddress string

	// FromName is the display name used in the From header
	FromName string
}

// sesAPI is the slice of the SES client the sender needs.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender delivers notifications as email through Amazon SES.
type EmailSender struct {
	config      EmailConfig
	client      sesAPI
	rateLimiter *RateLimiter
}

const (
	maxSubjectLength = 256
	emailCharset     = "UTF-8"
)

// NewEmailSender creates an SES-backed email sender. Credentials are
// resolved through the default AWS credential chain.
//
// The rate limiter is set to 10 requests/second with a burst of 5,
// below the default SES sending quota of 14/s.
func NewEmailSender(ctx context.Context, config EmailConfig) (*EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &EmailSender{
		config:      config,
		client:      ses.NewFromConfig(cfg),
		rateLimiter: NewRateLimiter(10.0, 5),
	}, nil
}

// buildSendInput assembles the SES request for one notification. The
// HTML part is only included when the content carries HTML.
func (e *EmailSender) buildSendInput(to string, content entity.NotificationContent) *ses.SendEmailInput {
	subject := truncateText(content.Title, maxSubjectLength, "")

	source := e.config.FromAddress
	if e.config.FromName != "" {
		source = fmt.Sprintf("%s <%s>", e.config.FromName, e.config.FromAddress)
	}

	body := &types.Body{
		Text: &types.Content{
			Data:    aws.String(content.Message),
			Charset: aws.String(emailCharset),
		},
	}
	if content.HTMLMessage != "" {
		body.Html = &types.Content{
			Data:    aws.String(content.HTMLMessage),
			Charset: aws.String(emailCharset),
		}
	}

	return &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String(emailCharset),
			},
			Body: body,
		},
	}
}

// Send delivers one notification to the given address. The SES SDK
// already retries throttled and transient failures internally, so a
// failed call is surfaced to the dispatcher as-is.
func (e *EmailSender) Send(ctx context.Context, to string, content entity.NotificationContent) error {
	if !e.config.Enabled {
		return errors.New("email delivery is disabled")
	}
	if to == "" {
		return errors.New("recipient address is empty")
	}

	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	if err := e.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	start := time.Now()
	out, err := e.client.SendEmail(ctx, e.buildSendInput(to, content))
	if err != nil {
		slog.Error("SES send failed",
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return fmt.Errorf("ses send email: %w", err)
	}

	slog.Info("email delivered",
		slog.String("request_id", requestID),
		slog.String("message_id", aws.ToString(out.MessageId)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
