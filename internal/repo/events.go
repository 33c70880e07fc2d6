package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Events appends domain events. Events written inside a checkout transaction
// commit atomically with the order they describe.
type Events struct {
	Pool *pgxpool.Pool
}

// Insert appends one event using the pool.
func (r Events) Insert(ctx context.Context, topic string, payload []byte) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO domain_events (id, topic, payload) VALUES ($1, $2, $3)`,
		uuid.New(), topic, payload)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// InsertTx appends one event inside an open transaction.
func (r Events) InsertTx(ctx context.Context, tx pgx.Tx, topic string, payload []byte) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO domain_events (id, topic, payload) VALUES ($1, $2, $3)`,
		uuid.New(), topic, payload)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
