package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Event is one persisted domain event as seen by notifiers.
type Event struct {
	Topic   string
	Payload []byte
}

// Store defines the persistence operations required by the event bus.
type Store interface {
	InsertTx(ctx context.Context, tx pgx.Tx, topic string, payload []byte) error
}

// Notifier reacts to emitted events (e.g. order confirmation mail).
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus persists domain events and fans them out to downstream handlers. The
// write happens inside the caller's transaction so events and the state
// they describe commit together; notifiers run after, best effort.
type Bus struct {
	Store     Store
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured notifiers.
func (b *Bus) Emit(ctx context.Context, tx pgx.Tx, topic string, payload any) (Event, error) {
	if b == nil || b.Store == nil {
		return Event{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: encode payload: %w", err)
	}
	if err := b.Store.InsertTx(ctx, tx, topic, encoded); err != nil {
		return Event{}, fmt.Errorf("events: persist event: %w", err)
	}
	ev := Event{Topic: topic, Payload: encoded}

	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, ev); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return ev, joined
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	switch v := payload.(type) {
	case []byte:
		if len(v) == 0 {
			return []byte("{}"), nil
		}
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid json")
		}
		return append([]byte(nil), v...), nil
	case json.RawMessage:
		return encodePayload([]byte(v))
	default:
		return json.Marshal(v)
	}
}
