package produce

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	InventoryChangesQueue   = "inventory.changes"
	InventoryChangesBinding = "inventory.#"
)

// ChangeMessage announces a committed mutation of an inventory entity.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Actor     string    `json:"actor,omitempty"`
	Severity  string    `json:"severity,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (m ChangeMessage) RoutingKey() string {
	return fmt.Sprintf("inventory.%s.%s", m.Entity, m.Action)
}

type InventoryService struct {
	channel *amqp.Channel
}

func InitInventoryService(channel *amqp.Channel) *InventoryService {
	if err := declareInventoryExchange(channel); err != nil {
		log.Printf("Failed to declare inventory exchange: %v", err)
		return nil
	}

	if _, err := channel.QueueDeclare(
		InventoryChangesQueue, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	); err != nil {
		log.Printf("Failed to declare queue %s: %v", InventoryChangesQueue, err)
		return nil
	}

	if err := channel.QueueBind(
		InventoryChangesQueue,   // queue name
		InventoryChangesBinding, // routing key
		InventoryExchange,       // exchange
		false,
		nil,
	); err != nil {
		log.Printf("Failed to bind queue %s: %v", InventoryChangesQueue, err)
		return nil
	}

	return &InventoryService{channel: channel}
}

func (s *InventoryService) PublishChange(ctx context.Context, message ChangeMessage) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal change message: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		InventoryExchange,    // exchange
		message.RoutingKey(), // routing key
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    message.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish change message: %w", err)
	}

	return nil
}
