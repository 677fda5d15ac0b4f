package postgres

import (
	"context"
	"fmt"

	"github.com/mkeskkula/haaldus/internal/store"
)

// Compile-time interface check.
var _ store.Achievements = (*AchievementStore)(nil)

// AchievementStore is the achievement-unlock table backed by
// achievement_unlocks. All methods are safe for concurrent use.
type AchievementStore struct {
	db DB
}

// NewAchievementStore creates a store over the given database connection or
// pool. The caller is responsible for running [Migrate] before issuing
// queries.
func NewAchievementStore(db DB) *AchievementStore {
	return &AchievementStore{db: db}
}

// Unlock implements [store.Achievements]. The insert is atomic: the primary
// key on (user_id, achievement_type) plus ON CONFLICT DO NOTHING guarantees
// at most one row per pair even when the same achievement is evaluated by
// concurrent requests. inserted is false when the pair already existed.
func (s *AchievementStore) Unlock(ctx context.Context, u store.Unlock) (bool, error) {
	const q = `
		INSERT INTO achievement_unlocks (user_id, achievement_type, name, description, unlocked_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_type) DO NOTHING`

	tag, err := s.db.Exec(ctx, q, u.UserID, u.Type, u.Name, u.Description, u.UnlockedAt)
	if err != nil {
		return false, fmt.Errorf("achievements: unlock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByUser implements [store.Achievements]. Unlocks are returned oldest
// first.
func (s *AchievementStore) ListByUser(ctx context.Context, userID string) ([]store.Unlock, error) {
	const q = `
		SELECT user_id, achievement_type, name, description, unlocked_at
		FROM   achievement_unlocks
		WHERE  user_id = $1
		ORDER  BY unlocked_at`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("achievements: list by user: %w", err)
	}
	defer rows.Close()

	var unlocks []store.Unlock
	for rows.Next() {
		var u store.Unlock
		if err := rows.Scan(&u.UserID, &u.Type, &u.Name, &u.Description, &u.UnlockedAt); err != nil {
			return nil, fmt.Errorf("achievements: scan: %w", err)
		}
		unlocks = append(unlocks, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievements: rows: %w", err)
	}
	return unlocks, nil
}
