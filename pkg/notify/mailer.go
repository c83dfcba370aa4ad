package notify

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailer wraps Mailgun client configuration for the email channel.
type Mailer struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailer(domain, apiKey, sender string) *Mailer {
	return &Mailer{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send delivers one event as a plain-text email.
func (m *Mailer) Send(ctx context.Context, to, subject, text string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}
