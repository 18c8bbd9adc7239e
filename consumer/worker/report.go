package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/infra/produce"
	"github.com/tnqbao/gau-inventory-service/service"
)

// ReportConsumer renders queued system reports into object storage.
type ReportConsumer struct {
	channel *amqp.Channel
	infra   *infra.Infra
	service *service.Service
	backoff time.Duration
}

func NewReportConsumer(channel *amqp.Channel, infra *infra.Infra, svc *service.Service) *ReportConsumer {
	return &ReportConsumer{
		channel: channel,
		infra:   infra,
		service: svc,
		backoff: defaultBackoff,
	}
}

func (c *ReportConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ReportQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register report consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Report Consumer] Started listening for report jobs on queue: %s", produce.ReportQueue)

	go c.run(ctx, msgs)
	return nil
}

func (c *ReportConsumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	listen(ctx, c.infra.Logger.InfoWithContextf, "Report Consumer", msgs, c.handleReportJob)
}

func (c *ReportConsumer) handleReportJob(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ReportJobMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Report Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	reportID, err := uuid.Parse(payload.ReportID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Report Consumer] Invalid report ID %q", payload.ReportID)
		_ = msg.Nack(false, false)
		return
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Report Consumer] Rendering report %s for system %s", reportID, payload.SystemID)

	err = retry(ctx, c.backoff, func(attempt int, err error) {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Report Consumer] Attempt %d/%d failed: %v", attempt, maxAttempts, err)
	}, func() error {
		return c.service.ProcessReportJob(ctx, reportID)
	})
	if err == nil {
		c.infra.Logger.InfoWithContextf(ctx, "[Report Consumer] Report %s completed", reportID)
		_ = msg.Ack(false)
		return
	}

	if ctx.Err() != nil {
		_ = msg.Nack(false, true)
		return
	}

	c.infra.Logger.ErrorWithContextf(ctx, err, "[Report Consumer] Giving up on report %s: %v", reportID, err)
	if failErr := c.service.FailReport(ctx, reportID, err); failErr != nil {
		c.infra.Logger.ErrorWithContextf(ctx, failErr, "[Report Consumer] Failed to mark report %s as failed: %v", reportID, failErr)
	}
	_ = msg.Nack(false, false)
}
