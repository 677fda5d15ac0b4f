package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/mkeskkula/haaldus/internal/store"
)

// Rule is one achievement definition: a stable type key, display metadata,
// and a pure predicate over the computed summary. Rules live in an ordered
// list and are evaluated deterministically in declaration order.
type Rule struct {
	Type        string
	Name        string
	Description string
	Satisfied   func(*Summary) bool
}

// DefaultRules is the built-in achievement set.
var DefaultRules = []Rule{
	{
		Type:        "first_practice",
		Name:        "First Steps",
		Description: "Complete your first pronunciation attempt.",
		Satisfied:   func(s *Summary) bool { return s.TotalPractice >= 1 },
	},
	{
		Type:        "ten_sessions",
		Name:        "Regular",
		Description: "Complete ten pronunciation attempts.",
		Satisfied:   func(s *Summary) bool { return s.TotalPractice >= 10 },
	},
	{
		Type:        "high_scorer",
		Name:        "Sharp Ear",
		Description: "Score 0.9 or higher on a single attempt.",
		Satisfied:   func(s *Summary) bool { return s.BestScore >= 0.9 },
	},
	{
		Type:        "consistent",
		Name:        "Daily Habit",
		Description: "Practise on three consecutive days.",
		Satisfied:   func(s *Summary) bool { return s.CurrentStreak >= 3 },
	},
	{
		Type:        "improving",
		Name:        "On the Rise",
		Description: "Lift your recent average by more than 0.05 over the previous five attempts.",
		Satisfied:   func(s *Summary) bool { return s.ImprovementTrend > 0.05 },
	},
}

// evaluateAchievements checks every rule not yet unlocked for the user and
// persists first-time satisfactions. Already-unlocked rules are skipped
// before the predicate runs; the store's idempotent insert covers the race
// where two requests pass that check simultaneously.
func (a *Aggregator) evaluateAchievements(ctx context.Context, userID string, now time.Time, s *Summary) error {
	existing, err := a.unlocks.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("progress: list unlocks: %w", err)
	}
	unlocked := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		unlocked[u.Type] = struct{}{}
	}
	s.Achievements = existing

	for _, rule := range a.rules {
		if _, done := unlocked[rule.Type]; done {
			continue
		}
		if !rule.Satisfied(s) {
			continue
		}

		u := store.Unlock{
			UserID:      userID,
			Type:        rule.Type,
			Name:        rule.Name,
			Description: rule.Description,
			UnlockedAt:  now,
		}
		inserted, err := a.unlocks.Unlock(ctx, u)
		if err != nil {
			return fmt.Errorf("progress: unlock %s: %w", rule.Type, err)
		}
		if inserted {
			s.NewlyUnlocked = append(s.NewlyUnlocked, u)
			s.Achievements = append(s.Achievements, u)
		}
	}
	return nil
}
