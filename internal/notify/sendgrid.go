package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const maxProviderErrorBody = 512

type SendGridSender struct {
	client *sendgrid.Client
}

func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey)}
}

func (sender *SendGridSender) SendEmail(ctx context.Context, message EmailMessage) (string, error) {
	response, err := sender.client.SendWithContext(ctx, buildSendGridMail(message))
	if err != nil {
		return "", fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return "", &ProviderError{
			Provider:   "sendgrid",
			StatusCode: response.StatusCode,
			Body:       truncate(response.Body, maxProviderErrorBody),
		}
	}

	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 && strings.TrimSpace(ids[0]) != "" {
		return ids[0], nil
	}
	return "status " + strconv.Itoa(response.StatusCode), nil
}

// buildSendGridMail gives each recipient its own personalization so recipients do not see each other.
func buildSendGridMail(message EmailMessage) *mail.SGMailV3 {
	payload := mail.NewV3Mail()
	payload.SetFrom(mail.NewEmail(message.FromName, message.FromAddress))
	payload.Subject = message.Subject

	for _, recipient := range message.To {
		personalization := mail.NewPersonalization()
		personalization.AddTos(mail.NewEmail(recipient.Label, recipient.Address))
		payload.AddPersonalizations(personalization)
	}

	if message.TextBody != "" {
		payload.AddContent(mail.NewContent("text/plain", message.TextBody))
	}
	payload.AddContent(mail.NewContent("text/html", message.HTMLBody))
	return payload
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}
