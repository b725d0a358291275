package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"concord/pkg/domain"
	audit "concord/pkg/platform/audit"
)

// Store persists the audit trail to Postgres. Rows are append-only; the
// bigserial seq column preserves commit order for reads.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Postgres-backed audit store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Schema returns the DDL the store expects. Applied by migrations, kept here
// so the table shape lives next to the queries.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS registry_audit (
	seq         BIGSERIAL PRIMARY KEY,
	id          UUID NOT NULL,
	category    TEXT NOT NULL,
	action      TEXT NOT NULL,
	identity    UUID NOT NULL,
	actor_id    UUID NOT NULL,
	request_id  TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
);`
}

// Append writes one audit event. Never updates or deletes.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()

	query := `
		INSERT INTO registry_audit (id, category, action, identity, actor_id, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.pool.Exec(ctx, query,
		uuid.New(),
		string(category),
		event.Action,
		uuid.UUID(event.Identity),
		uuid.UUID(event.ActorID),
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListRecent returns the most recent N events in commit order.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT action, identity, actor_id, request_id, occurred_at
		FROM (
			SELECT seq, action, identity, actor_id, request_id, occurred_at
			FROM registry_audit
			ORDER BY seq DESC
			LIMIT $1
		) recent
		ORDER BY seq ASC
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			action     string
			identity   uuid.UUID
			actorID    uuid.UUID
			requestID  string
			occurredAt time.Time
		)
		if err := rows.Scan(&action, &identity, &actorID, &requestID, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, audit.Event{
			Timestamp: occurredAt,
			Action:    action,
			Identity:  domain.Identity(identity),
			ActorID:   domain.Identity(actorID),
			RequestID: requestID,
		})
	}
	return events, rows.Err()
}
