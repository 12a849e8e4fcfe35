// Package repository stores finished and running matches in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"devils-dice/internal/model"
)

// Common errors for repository operations.
var (
	ErrMatchNotFound = errors.New("match not found")
)

// MatchRepository handles match persistence.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// Create records the start of a match.
func (r *MatchRepository) Create(ctx context.Context, id uuid.UUID, players []int64, startedAt time.Time) (*model.Match, error) {
	const query = `
		INSERT INTO matches (id, players, rolloff, turns, started_at)
		VALUES ($1, $2, FALSE, 0, $3)
		RETURNING id, players, winner, rolloff, turns, started_at, finished_at
	`

	m, err := scanMatch(r.pool.QueryRow(ctx, query, id, players, startedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	return m, nil
}

// Finish records the result of a match.
// Returns ErrMatchNotFound if the match does not exist.
func (r *MatchRepository) Finish(ctx context.Context, id uuid.UUID, winner int64, rolloff bool, turns int, finishedAt time.Time) (*model.Match, error) {
	const query = `
		UPDATE matches
		SET winner = $2, rolloff = $3, turns = $4, finished_at = $5
		WHERE id = $1
		RETURNING id, players, winner, rolloff, turns, started_at, finished_at
	`

	m, err := scanMatch(r.pool.QueryRow(ctx, query, id, winner, rolloff, turns, finishedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to finish match: %w", err)
	}
	return m, nil
}

// GetByID retrieves a match.
// Returns ErrMatchNotFound if the match does not exist.
func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	const query = `
		SELECT id, players, winner, rolloff, turns, started_at, finished_at
		FROM matches
		WHERE id = $1
	`

	m, err := scanMatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return m, nil
}

// ListRecent returns the most recently started matches.
func (r *MatchRepository) ListRecent(ctx context.Context, limit int) ([]*model.Match, error) {
	const query = `
		SELECT id, players, winner, rolloff, turns, started_at, finished_at
		FROM matches
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// TopWinners ranks players by finished matches won.
func (r *MatchRepository) TopWinners(ctx context.Context, limit int) ([]*model.WinnerRank, error) {
	const query = `
		WITH played AS (
			SELECT unnest(players) AS player_id, winner
			FROM matches
			WHERE finished_at IS NOT NULL
		)
		SELECT player_id,
			COUNT(*) FILTER (WHERE winner = player_id) AS wins,
			COUNT(*) AS played
		FROM played
		GROUP BY player_id
		HAVING COUNT(*) FILTER (WHERE winner = player_id) > 0
		ORDER BY wins DESC, played ASC, player_id ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top winners: %w", err)
	}
	defer rows.Close()

	var ranks []*model.WinnerRank
	for rows.Next() {
		var rank model.WinnerRank
		if err := rows.Scan(&rank.PlayerID, &rank.Wins, &rank.Played); err != nil {
			return nil, fmt.Errorf("failed to scan winner rank: %w", err)
		}
		ranks = append(ranks, &rank)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating winner ranks: %w", err)
	}

	return ranks, nil
}

func scanMatch(row pgx.Row) (*model.Match, error) {
	var m model.Match
	err := row.Scan(
		&m.ID,
		&m.Players,
		&m.Winner,
		&m.Rolloff,
		&m.Turns,
		&m.StartedAt,
		&m.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
