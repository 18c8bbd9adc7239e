package produce

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const EmailExchange = "email_exchange"

type EmailMessage struct {
	Type          string `json:"type"`
	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipientName,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Content       string `json:"content"`
	ActionUrl     string `json:"actionUrl,omitempty"`
}

// EmailService hands notification mails to the mailer service.
type EmailService struct {
	channel *amqp.Channel
}

func InitEmailService(channel *amqp.Channel) *EmailService {
	return &EmailService{
		channel: channel,
	}
}

// SendEventWarning tells a user that infrastructure they hold a role on is
// affected by a high impact event.
func (s *EmailService) SendEventWarning(ctx context.Context, email, recipientName, subject, content string) error {
	message := EmailMessage{
		Type:          "warning",
		Recipient:     email,
		RecipientName: recipientName,
		Subject:       subject,
		Content:       content,
	}

	return s.publishEmail(ctx, "email.warning", message)
}

func (s *EmailService) publishEmail(ctx context.Context, routingKey string, message EmailMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		EmailExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish email message: %w", err)
	}

	return nil
}
