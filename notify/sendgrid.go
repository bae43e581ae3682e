package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers mail through the SendGrid v3 HTTP API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	toEmail   string
}

// NewSendGridSender creates a sender for the given credentials and addresses.
func NewSendGridSender(apiKey, fromEmail, fromName, toEmail string) *SendGridSender {
	return &SendGridSender{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
	}
}

// Send builds the SendGrid message and posts it. SendGrid answers 202 on success.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("missing SendGrid API key")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", s.toEmail)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)
	// Replies go back to the notification inbox.
	m.SetReplyTo(mail.NewEmail("", s.toEmail))

	client := sendgrid.NewSendClient(s.apiKey)
	resp, err := client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid error %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
