package services

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
)

// MailerService sends transactional email through SES.
type MailerService struct {
	SES    sesiface.SESAPI
	Sender string
	Logger *slog.Logger
}

func NewMailerService(sesClient sesiface.SESAPI, sender string, logger *slog.Logger) *MailerService {
	return &MailerService{SES: sesClient, Sender: sender, Logger: logger}
}

func (m *MailerService) Send(ctx context.Context, to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.Sender),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(html)},
				Text: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(text)},
			},
		},
	}
	if _, err := m.SES.SendEmailWithContext(ctx, input); err != nil {
		return err
	}
	m.Logger.Info("email sent", "to", to, "subject", subject)
	return nil
}
