// Package progress computes per-user practice statistics from the score-event
// log and evaluates achievement rules against them.
//
// The aggregator is read-mostly: it derives a [Summary] from stored events on
// every call and only writes when an achievement rule is satisfied for the
// first time. Awarding is idempotent — the store's unique (user, type)
// constraint absorbs repeated and concurrent evaluation.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/mkeskkula/haaldus/internal/store"
)

const (
	// statsWindow caps how many recent events feed the summary statistics.
	statsWindow = 20

	// streakWindow caps how far back the calendar-day streak walk looks.
	streakWindow = 30 * 24 * time.Hour

	// trendCohort is the size of each cohort in the improvement-trend
	// comparison: the most recent trendCohort scores against the
	// trendCohort scores before them.
	trendCohort = 5
)

// WordStats is the per-word slice of a user's practice history.
type WordStats struct {
	Attempts     int     `json:"attempts"`
	BestScore    float64 `json:"best_score"`
	AverageScore float64 `json:"average_score"`
}

// Summary is a user's derived progress record. It is computed on demand and
// never stored.
type Summary struct {
	TotalPractice    int                  `json:"total_practice"`
	AverageScore     float64              `json:"average_score"`
	BestScore        float64              `json:"best_score"`
	ImprovementTrend float64              `json:"improvement_trend"`
	CurrentStreak    int                  `json:"current_streak"`
	RecentEvents     []store.ScoreEvent   `json:"recent_events"`
	WordBreakdown    map[string]WordStats `json:"word_breakdown"`
	Achievements     []store.Unlock       `json:"achievements"`
	NewlyUnlocked    []store.Unlock       `json:"newly_unlocked"`
}

// Aggregator derives progress summaries and awards achievements.
type Aggregator struct {
	events  store.ScoreEvents
	unlocks store.Achievements
	rules   []Rule
	now     func() time.Time
}

// Option is a functional option for configuring an [Aggregator].
type Option func(*Aggregator)

// WithRules replaces the achievement rule list. Rules are evaluated in slice
// order.
func WithRules(rules []Rule) Option {
	return func(a *Aggregator) { a.rules = rules }
}

// WithClock replaces the time source. Tests use this to pin "today" for
// streak computation.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an Aggregator over the given stores with the default
// achievement rules.
func New(events store.ScoreEvents, unlocks store.Achievements, opts ...Option) *Aggregator {
	a := &Aggregator{
		events:  events,
		unlocks: unlocks,
		rules:   DefaultRules,
		now:     time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Summarize computes the progress summary for userID and evaluates
// achievement rules against it. Newly satisfied rules are persisted and
// reported in [Summary.NewlyUnlocked]; rules unlocked on earlier calls are
// not re-awarded.
//
// A user with no history gets a zero-valued summary, not an error.
func (a *Aggregator) Summarize(ctx context.Context, userID string) (*Summary, error) {
	now := a.now()

	recent, err := a.events.RecentByUser(ctx, userID, statsWindow)
	if err != nil {
		return nil, fmt.Errorf("progress: load recent events: %w", err)
	}

	s := &Summary{
		RecentEvents:  recent,
		WordBreakdown: map[string]WordStats{},
	}
	if len(recent) == 0 {
		return s, nil
	}

	s.TotalPractice = len(recent)
	s.AverageScore = mean(scores(recent))
	s.BestScore = best(scores(recent))
	s.ImprovementTrend = trend(recent)
	s.WordBreakdown = wordBreakdown(recent)

	streakEvents, err := a.events.ByUserSince(ctx, userID, now.Add(-streakWindow))
	if err != nil {
		return nil, fmt.Errorf("progress: load streak events: %w", err)
	}
	s.CurrentStreak = streak(now, streakEvents)

	if err := a.evaluateAchievements(ctx, userID, now, s); err != nil {
		return nil, err
	}
	return s, nil
}

// trend compares the mean of the most recent trendCohort scores against the
// mean of the cohort before them. Fewer than trendCohort+1 events leave no
// older cohort to compare, so the trend is 0.
func trend(recent []store.ScoreEvent) float64 {
	if len(recent) <= trendCohort {
		return 0
	}
	newer := scores(recent[:trendCohort])
	older := scores(recent[trendCohort:min(2*trendCohort, len(recent))])
	return mean(newer) - mean(older)
}

// streak counts consecutive calendar days with at least one event, walking
// backward from today when today has an event, else from yesterday. Calendar
// dates are taken in now's location so the boundary is a local midnight, not
// a rolling 24-hour window.
func streak(now time.Time, events []store.ScoreEvent) int {
	if len(events) == 0 {
		return 0
	}

	days := make(map[string]struct{}, len(events))
	for _, ev := range events {
		days[dateOf(ev.CreatedAt, now.Location())] = struct{}{}
	}

	anchor := now
	if _, today := days[dateOf(now, now.Location())]; !today {
		anchor = now.AddDate(0, 0, -1)
		if _, yesterday := days[dateOf(anchor, now.Location())]; !yesterday {
			return 0
		}
	}

	n := 0
	for {
		if _, ok := days[dateOf(anchor, now.Location())]; !ok {
			return n
		}
		n++
		anchor = anchor.AddDate(0, 0, -1)
	}
}

func dateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

func wordBreakdown(events []store.ScoreEvent) map[string]WordStats {
	sums := make(map[string]float64, len(events))
	out := make(map[string]WordStats, len(events))
	for _, ev := range events {
		ws := out[ev.WordID]
		ws.Attempts++
		ws.BestScore = max(ws.BestScore, ev.Score)
		sums[ev.WordID] += ev.Score
		out[ev.WordID] = ws
	}
	for id, ws := range out {
		ws.AverageScore = sums[id] / float64(ws.Attempts)
		out[id] = ws
	}
	return out
}

func scores(events []store.ScoreEvent) []float64 {
	out := make([]float64, len(events))
	for i, ev := range events {
		out[i] = ev.Score
	}
	return out
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func best(vs []float64) float64 {
	out := 0.0
	for _, v := range vs {
		out = max(out, v)
	}
	return out
}
