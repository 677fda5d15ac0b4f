package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mkeskkula/haaldus/internal/store"
)

// Compile-time interface check.
var _ store.ScoreEvents = (*ScoreEventStore)(nil)

// ScoreEventStore is the append-only score-event log backed by the
// score_events table. All methods are safe for concurrent use.
type ScoreEventStore struct {
	db DB
}

// NewScoreEventStore creates a store over the given database connection or
// pool. The caller is responsible for running [Migrate] before issuing
// queries.
func NewScoreEventStore(db DB) *ScoreEventStore {
	return &ScoreEventStore{db: db}
}

// Append implements [store.ScoreEvents].
func (s *ScoreEventStore) Append(ctx context.Context, ev store.ScoreEvent) error {
	const q = `
		INSERT INTO score_events (id, user_id, word_id, score, hypothesis_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, q, ev.ID, ev.UserID, ev.WordID, ev.Score, ev.Hypothesis, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("score events: append: %w", err)
	}
	return nil
}

// RecentByUser implements [store.ScoreEvents]. Events are returned most
// recent first.
func (s *ScoreEventStore) RecentByUser(ctx context.Context, userID string, limit int) ([]store.ScoreEvent, error) {
	const q = `
		SELECT id, user_id, word_id, score, hypothesis_text, created_at
		FROM   score_events
		WHERE  user_id = $1
		ORDER  BY created_at DESC
		LIMIT  $2`

	rows, err := s.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("score events: recent by user: %w", err)
	}
	return collectEvents(rows)
}

// ByUserSince implements [store.ScoreEvents]. Events are returned most recent
// first.
func (s *ScoreEventStore) ByUserSince(ctx context.Context, userID string, since time.Time) ([]store.ScoreEvent, error) {
	const q = `
		SELECT id, user_id, word_id, score, hypothesis_text, created_at
		FROM   score_events
		WHERE  user_id = $1
		  AND  created_at >= $2
		ORDER  BY created_at DESC`

	rows, err := s.db.Query(ctx, q, userID, since)
	if err != nil {
		return nil, fmt.Errorf("score events: by user since: %w", err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]store.ScoreEvent, error) {
	defer rows.Close()

	var events []store.ScoreEvent
	for rows.Next() {
		var ev store.ScoreEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.WordID, &ev.Score, &ev.Hypothesis, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("score events: scan: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("score events: rows: %w", err)
	}
	return events, nil
}
