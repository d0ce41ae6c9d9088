package sender

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"nolofication/internal/domain/entity"
)

type stubSESAPI struct {
	input *ses.SendEmailInput
	err   error
}

func (s *stubSESAPI) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func testEmailSender(api sesAPI) *EmailSender {
	return &EmailSender{
		config: EmailConfig{
			Enabled:     true,
			Region:      "us-east-1",
			FromAddress: "noreply@example.com",
			FromName:    "Nolofication",
		},
		client:      api,
		rateLimiter: NewRateLimiter(100.0, 10),
	}
}

func TestEmailSender_Send(t *testing.T) {
	t.Run("sends subject, text and html parts", func(t *testing.T) {
		api := &stubSESAPI{}
		sender := testEmailSender(api)

		err := sender.Send(context.Background(), "user@example.com", entity.NotificationContent{
			Title:       "Weekly digest",
			Message:     "plain body",
			HTMLMessage: "<p>rich body</p>",
			Type:        entity.TypeInfo,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		in := api.input
		if in == nil {
			t.Fatal("expected SendEmail to be called")
		}
		if got := aws.ToString(in.Source); got != "Nolofication <noreply@example.com>" {
			t.Errorf("expected display-name source, got %q", got)
		}
		if got := in.Destination.ToAddresses; len(got) != 1 || got[0] != "user@example.com" {
			t.Errorf("expected single recipient, got %v", got)
		}
		if got := aws.ToString(in.Message.Subject.Data); got != "Weekly digest" {
			t.Errorf("expected subject, got %q", got)
		}
		if got := aws.ToString(in.Message.Body.Text.Data); got != "plain body" {
			t.Errorf("expected text part, got %q", got)
		}
		if in.Message.Body.Html == nil || aws.ToString(in.Message.Body.Html.Data) != "<p>rich body</p>" {
			t.Error("expected html part to be set")
		}
	})

	t.Run("omits html part for plain content", func(t *testing.T) {
		api := &stubSESAPI{}
		sender := testEmailSender(api)

		err := sender.Send(context.Background(), "user@example.com", entity.NotificationContent{
			Title: "t", Message: "m", Type: entity.TypeInfo,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if api.input.Message.Body.Html != nil {
			t.Error("expected no html part")
		}
	})

	t.Run("truncates overlong subject", func(t *testing.T) {
		api := &stubSESAPI{}
		sender := testEmailSender(api)

		err := sender.Send(context.Background(), "user@example.com", entity.NotificationContent{
			Title: strings.Repeat("s", 400), Message: "m", Type: entity.TypeInfo,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if got := len(aws.ToString(api.input.Message.Subject.Data)); got != maxSubjectLength {
			t.Errorf("expected subject length %d, got %d", maxSubjectLength, got)
		}
	})

	t.Run("surfaces SES failure", func(t *testing.T) {
		api := &stubSESAPI{err: errors.New("throttled")}
		sender := testEmailSender(api)

		err := sender.Send(context.Background(), "user@example.com", entity.NotificationContent{
			Title: "t", Message: "m", Type: entity.TypeInfo,
		})
		if err == nil {
			t.Fatal("expected error from SES")
		}
	})

	t.Run("empty recipient rejected", func(t *testing.T) {
		sender := testEmailSender(&stubSESAPI{})
		if err := sender.Send(context.Background(), "", entity.NotificationContent{Title: "t"}); err == nil {
			t.Fatal("expected error for empty recipient")
		}
	})

	t.Run("disabled sender rejects immediately", func(t *testing.T) {
		sender := testEmailSender(&stubSESAPI{})
		sender.config.Enabled = false
		if err := sender.Send(context.Background(), "user@example.com", entity.NotificationContent{Title: "t"}); err == nil {
			t.Fatal("expected error when disabled")
		}
	})
}
