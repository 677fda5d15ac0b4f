// Package postgres implements the store interfaces on PostgreSQL via pgx.
//
// Stores operate over the narrow [DB] interface so unit tests can substitute
// mocks; production code passes a *pgxpool.Pool, giving each request scoped
// acquisition and guaranteed release of its connection.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the haaldus tables. Execute it via [Migrate] or
// apply it manually during deployment.
//
// The unique constraint on (user_id, achievement_type) is what makes
// achievement awarding idempotent under concurrent evaluation: duplicate
// inserts resolve to ON CONFLICT DO NOTHING instead of a second row.
const Schema = `
CREATE TABLE IF NOT EXISTS score_events (
    id              TEXT PRIMARY KEY,
    user_id         TEXT NOT NULL,
    word_id         TEXT NOT NULL,
    score           DOUBLE PRECISION NOT NULL,
    hypothesis_text TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_score_events_user_created ON score_events(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS achievement_unlocks (
    user_id          TEXT NOT NULL,
    achievement_type TEXT NOT NULL,
    name             TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    unlocked_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, achievement_type)
);
`

// DB is the database interface used by the stores. Both *pgxpool.Pool and
// *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrate executes the [Schema] DDL against the database, creating the
// score_events and achievement_unlocks tables if they do not already exist.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}
