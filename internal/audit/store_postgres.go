package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events in PostgreSQL. The table is append-only
// by convention; this type exposes no mutation beyond Append.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (action, entity_type, entity_id, actor, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(event.Action), event.EntityType, event.EntityID, event.Actor, event.Timestamp, event.Details,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT action, entity_type, entity_id, actor, occurred_at, details
		FROM audit_events
		ORDER BY occurred_at DESC
		LIMIT NULLIF($1, 0)`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListByEntityType(ctx context.Context, entityType string, limit int) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT action, entity_type, entity_id, actor, occurred_at, details
		FROM audit_events
		WHERE entity_type = $1
		ORDER BY occurred_at DESC
		LIMIT NULLIF($2, 0)`, entityType, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events by entity type: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&action, &e.EntityType, &e.EntityID, &e.Actor, &e.Timestamp, &e.Details); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	return events, rows.Err()
}
