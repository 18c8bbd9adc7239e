package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/service"
)

// ChangeConsumer reacts to committed inventory changes: it drops the cached
// dashboard and warns users about new high impact events.
type ChangeConsumer struct {
	channel  *amqp.Channel
	infra    *infra.Infra
	service  *service.Service
	notifier service.EventNotifier
	backoff  time.Duration
}

func NewChangeConsumer(channel *amqp.Channel, infra *infra.Infra, svc *service.Service, notifier service.EventNotifier) *ChangeConsumer {
	return &ChangeConsumer{
		channel:  channel,
		infra:    infra,
		service:  svc,
		notifier: notifier,
		backoff:  defaultBackoff,
	}
}

func (c *ChangeConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.InventoryChangesQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register change consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Change Consumer] Started listening for changes on queue: %s", produce.InventoryChangesQueue)

	go c.run(ctx, msgs)
	return nil
}

func (c *ChangeConsumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	listen(ctx, c.infra.Logger.InfoWithContextf, "Change Consumer", msgs, c.handleChange)
}

func (c *ChangeConsumer) handleChange(ctx context.Context, msg amqp.Delivery) {
	var change produce.ChangeMessage
	if err := json.Unmarshal(msg.Body, &change); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Change Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	c.infra.Logger.DebugWithContextf(ctx, "[Change Consumer] %s", change.RoutingKey())

	if err := c.service.InvalidateDashboard(ctx); err != nil {
		c.infra.Logger.WarningWithContextf(ctx, "[Change Consumer] Failed to invalidate dashboard: %v", err)
	}

	if !c.needsWarning(change) {
		_ = msg.Ack(false)
		return
	}

	eventID, err := uuid.Parse(change.ID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Change Consumer] Invalid event ID %q", change.ID)
		_ = msg.Nack(false, false)
		return
	}

	var sent int
	err = retry(ctx, c.backoff, func(attempt int, err error) {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Change Consumer] Notification attempt %d/%d failed: %v", attempt, maxAttempts, err)
	}, func() error {
		var notifyErr error
		sent, notifyErr = c.service.NotifyEvent(ctx, eventID, c.notifier)
		return notifyErr
	})
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Change Consumer] Giving up on notifications for event %s: %v", eventID, err)
		_ = msg.Nack(false, ctx.Err() != nil)
		return
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Change Consumer] Sent %d warnings for event %s", sent, eventID)
	_ = msg.Ack(false)
}

func (c *ChangeConsumer) needsWarning(change produce.ChangeMessage) bool {
	if c.notifier == nil || change.Entity != "event" || change.Action != "created" {
		return false
	}
	return change.Severity == entity.SeverityHigh || change.Severity == entity.SeverityCritical
}
