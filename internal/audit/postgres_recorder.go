package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder implements Recorder using pgxpool. The auth_events
// table is insert-only.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder creates a Recorder backed by the given connection pool.
func NewPostgresRecorder(pool *pgxpool.Pool) Recorder {
	return &PostgresRecorder{pool: pool}
}

// Record inserts an authentication event.
func (r *PostgresRecorder) Record(ctx context.Context, e Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO auth_events (id, request_id, path, outcome, identity_id)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, e.ID, e.RequestID, e.Path, e.Outcome, e.IdentityID)
	if err != nil {
		return fmt.Errorf("inserting auth event: %w", err)
	}

	return nil
}
