// Package notify delivers order confirmations. The API process enqueues a
// task when an order is created; the worker process sends the mail and
// flips the order into the confirmed state.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskOrderConfirmation is the asynq task type for confirmation mails.
const TaskOrderConfirmation = "order:confirmation"

// OrderConfirmationPayload carries everything the mail needs; the worker
// does not read the order back for rendering.
type OrderConfirmationPayload struct {
	OrderID    string `json:"orderId"`
	Email      string `json:"email"`
	TotalPrice string `json:"totalPrice"`
	Currency   string `json:"currency"`
}

// NewOrderConfirmationTask builds the asynq task for one order.
func NewOrderConfirmationTask(payload OrderConfirmationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notify: encode confirmation payload: %w", err)
	}
	return asynq.NewTask(TaskOrderConfirmation, data, asynq.MaxRetry(5)), nil
}
