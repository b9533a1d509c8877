package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SESEmailSender delivers plain-text notification emails through SES.
type SESEmailSender struct {
	client *ses.Client
	from   string
}

// ConnectSES builds a sender from the ambient AWS config. Returns an
// untyped nil when CREWTIME_EMAIL_FROM is unset so callers can hand the
// result straight to NewStoreNotifier and email push is skipped.
func ConnectSES(ctx context.Context) (EmailSender, error) {
	from := os.Getenv("CREWTIME_EMAIL_FROM")
	if from == "" {
		return nil, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESEmailSender{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (s *SESEmailSender) Send(ctx context.Context, to, subject, body string) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
