// Package store defines the persistence interfaces and record types for the
// haaldus server: an append-only score-event log and an achievement-unlock
// table, both keyed by user.
//
// The postgres subpackage provides the production implementation; tests use
// in-memory fakes.
package store

import (
	"context"
	"time"
)

// ScoreEvent is one scored pronunciation attempt. Events are append-only and
// never mutated.
type ScoreEvent struct {
	// ID is the event's unique identifier (UUID).
	ID string `json:"id"`

	// UserID is the practising user.
	UserID string `json:"user_id"`

	// WordID references the catalog word that was practised.
	WordID string `json:"word_id"`

	// Score is the final pronunciation score in [0, 1].
	Score float64 `json:"score"`

	// Hypothesis is the recognised (or manually entered) text the score was
	// computed from.
	Hypothesis string `json:"hypothesis_text"`

	// CreatedAt is when the attempt was scored.
	CreatedAt time.Time `json:"timestamp"`
}

// Unlock is one achievement awarded to a user. At most one row exists per
// (user, achievement type).
type Unlock struct {
	UserID      string    `json:"user_id"`
	Type        string    `json:"achievement_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// ScoreEvents is the append-only score-event log.
type ScoreEvents interface {
	// Append stores a new score event.
	Append(ctx context.Context, ev ScoreEvent) error

	// RecentByUser returns up to limit events for userID, most recent first.
	RecentByUser(ctx context.Context, userID string, limit int) ([]ScoreEvent, error)

	// ByUserSince returns all events for userID created at or after since,
	// most recent first.
	ByUserSince(ctx context.Context, userID string, since time.Time) ([]ScoreEvent, error)
}

// Achievements is the achievement-unlock table.
type Achievements interface {
	// Unlock records an achievement for a user. It is idempotent: when the
	// (user, type) pair already exists nothing is written and inserted is
	// false. Safe under concurrent duplicate submissions.
	Unlock(ctx context.Context, u Unlock) (inserted bool, err error)

	// ListByUser returns all unlocks for userID, oldest first.
	ListByUser(ctx context.Context, userID string) ([]Unlock, error)
}
