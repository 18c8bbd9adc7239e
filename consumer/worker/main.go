package worker

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-inventory-service/utils"
)

const (
	maxAttempts    = 3
	defaultBackoff = 2 * time.Second
)

// listen dispatches deliveries to handle until ctx ends or the channel closes.
func listen(ctx context.Context, logf func(ctx context.Context, format string, args ...interface{}), tag string, msgs <-chan amqp.Delivery, handle func(context.Context, amqp.Delivery)) {
	for {
		select {
		case <-ctx.Done():
			logf(ctx, "[%s] Shutting down...", tag)
			return
		case msg, ok := <-msgs:
			if !ok {
				logf(ctx, "[%s] Channel closed", tag)
				return
			}
			handle(ctx, msg)
		}
	}
}

// retry runs fn up to maxAttempts times, waiting attempt*backoff between tries.
// Not-found and invalid-input errors are returned immediately.
func retry(ctx context.Context, backoff time.Duration, onFailure func(attempt int, err error), fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if utils.IsCode(err, utils.CodeNotFound) || utils.IsCode(err, utils.CodeInvalidInput) {
			return err
		}
		onFailure(attempt, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * backoff):
		}
	}
	return err
}
