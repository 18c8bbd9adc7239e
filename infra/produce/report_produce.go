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
	ReportQueue      = "report.system"
	ReportRoutingKey = "report.system.export"
)

// ReportJobMessage asks the worker to render a system report into object storage.
type ReportJobMessage struct {
	ReportID    string    `json:"report_id"`
	SystemID    string    `json:"system_id"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type ReportService struct {
	channel *amqp.Channel
}

func InitReportService(channel *amqp.Channel) *ReportService {
	if err := declareInventoryExchange(channel); err != nil {
		log.Printf("Failed to declare inventory exchange: %v", err)
		return nil
	}

	if _, err := channel.QueueDeclare(ReportQueue, true, false, false, false, nil); err != nil {
		log.Printf("Failed to declare queue %s: %v", ReportQueue, err)
		return nil
	}

	if err := channel.QueueBind(ReportQueue, ReportRoutingKey, InventoryExchange, false, nil); err != nil {
		log.Printf("Failed to bind queue %s: %v", ReportQueue, err)
		return nil
	}

	return &ReportService{channel: channel}
}

func (s *ReportService) PublishSystemReport(ctx context.Context, message ReportJobMessage) error {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal report job: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		InventoryExchange,
		ReportRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish report job: %w", err)
	}

	return nil
}
