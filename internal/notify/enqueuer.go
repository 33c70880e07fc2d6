package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/drucklab/backend-shop/internal/events"
)

// Enqueuer reacts to order events by scheduling confirmation tasks. It
// implements events.Notifier.
type Enqueuer struct {
	Client *asynq.Client
	Logger zerolog.Logger
}

// Notify enqueues a confirmation task for order.created events. Other
// topics are ignored.
func (e Enqueuer) Notify(ctx context.Context, event events.Event) error {
	if event.Topic != events.TopicOrderCreated {
		return nil
	}
	if e.Client == nil {
		return nil
	}
	var payload OrderConfirmationPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("notify: decode order payload: %w", err)
	}
	if payload.Email == "" {
		return nil
	}
	task, err := NewOrderConfirmationTask(payload)
	if err != nil {
		return err
	}
	info, err := e.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("notify: enqueue confirmation: %w", err)
	}
	e.Logger.Info().
		Str("task_id", info.ID).
		Str("order_id", payload.OrderID).
		Msg("order confirmation enqueued")
	return nil
}
