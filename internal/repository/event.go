package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"devils-dice/internal/model"
)

// EventRepository handles persistence of a match's event log.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// AppendBatch inserts events in one round trip. Either every event is
// stored or none is.
func (r *EventRepository) AppendBatch(ctx context.Context, events []*model.MatchEvent) error {
	if len(events) == 0 {
		return nil
	}

	const query = `
		INSERT INTO match_events (match_id, seq, type, player_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(query, e.MatchID, e.Seq, e.Type, e.PlayerID, e.Payload)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range events {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to append event %d: %w", events[i].Seq, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// ListByMatch returns a match's events in sequence order.
func (r *EventRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]*model.MatchEvent, error) {
	const query = `
		SELECT id, match_id, seq, type, player_id, payload, created_at
		FROM match_events
		WHERE match_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.MatchEvent
	for rows.Next() {
		var e model.MatchEvent
		if err := rows.Scan(&e.ID, &e.MatchID, &e.Seq, &e.Type, &e.PlayerID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// CountByType counts a match's events per event type.
func (r *EventRepository) CountByType(ctx context.Context, matchID uuid.UUID) (map[string]int, error) {
	const query = `
		SELECT type, COUNT(*)
		FROM match_events
		WHERE match_id = $1
		GROUP BY type
	`

	rows, err := r.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			eventType string
			n         int
		)
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[eventType] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event counts: %w", err)
	}

	return counts, nil
}
