package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// EmailSender delivers a single message.
type EmailSender interface {
	Send(to, subject, body string) error
}

// LogSender writes mails to the structured log instead of an SMTP relay.
// It stands in for a real provider in development and tests.
type LogSender struct {
	Logger zerolog.Logger
}

// Send implements EmailSender.
func (s LogSender) Send(to, subject, body string) error {
	s.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email")
	return nil
}

type orderConfirmer interface {
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
}

// ConfirmationHandler consumes confirmation tasks in the worker process.
type ConfirmationHandler struct {
	Mail   EmailSender
	Orders orderConfirmer
	Logger zerolog.Logger
}

// HandleTask sends the confirmation mail and marks the order confirmed.
func (h ConfirmationHandler) HandleTask(ctx context.Context, task *asynq.Task) error {
	var payload OrderConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("notify: decode confirmation task: %w", err)
	}

	subject := "Bestellbestätigung " + payload.OrderID
	body := fmt.Sprintf("Vielen Dank für Ihre Bestellung %s über %s %s.",
		payload.OrderID, payload.TotalPrice, payload.Currency)
	if err := h.Mail.Send(payload.Email, subject, body); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}

	if h.Orders != nil {
		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			return fmt.Errorf("notify: parse order id: %w", err)
		}
		if err := h.Orders.MarkConfirmed(ctx, orderID); err != nil {
			h.Logger.Error().Err(err).Str("order_id", payload.OrderID).Msg("mark order confirmed")
			return err
		}
	}
	return nil
}
