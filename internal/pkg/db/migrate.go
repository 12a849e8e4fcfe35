package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "matches table",
		sql: `
			CREATE TABLE IF NOT EXISTS matches (
				id UUID PRIMARY KEY,
				players BIGINT[] NOT NULL,
				winner BIGINT,
				rolloff BOOLEAN NOT NULL DEFAULT FALSE,
				turns INT NOT NULL DEFAULT 0,
				started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				finished_at TIMESTAMPTZ
			);
			CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_at DESC);
			CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner) WHERE winner IS NOT NULL;
		`,
	},
	{
		name: "match_events table",
		sql: `
			CREATE TABLE IF NOT EXISTS match_events (
				id BIGSERIAL PRIMARY KEY,
				match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
				seq INT NOT NULL,
				type VARCHAR(50) NOT NULL,
				player_id BIGINT NOT NULL DEFAULT 0,
				payload JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (match_id, seq)
			);
			CREATE INDEX IF NOT EXISTS idx_match_events_type ON match_events(match_id, type);
		`,
	},
}

// Migrate creates the archive schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db Execer) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to run migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Int("migration", i+1).Str("name", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
