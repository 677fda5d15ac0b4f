// Package catalog holds the static word catalog for pronunciation practice.
//
// Words are organised hierarchically by proficiency level (A1, A2, …) and
// category (greetings, food, …). A [Catalog] is immutable after construction
// and safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

// Sentinel errors returned by [Catalog.Pack]. Both indicate a client input
// error: the requested level or category does not exist.
var (
	ErrUnknownLevel    = errors.New("unknown level")
	ErrUnknownCategory = errors.New("unknown category")
)

// WordItem is a single practice word. Immutable once loaded.
type WordItem struct {
	// ID uniquely identifies the word (e.g., "w_tere").
	ID string `yaml:"id" json:"id"`

	// Text is the word in the target language.
	Text string `yaml:"text" json:"text"`

	// IPA is the target pronunciation in the International Phonetic Alphabet.
	IPA string `yaml:"ipa" json:"ipa"`

	// Translation is the gloss in the learner's language.
	Translation string `yaml:"translation" json:"translation"`

	// Example is an optional example sentence.
	Example string `yaml:"example,omitempty" json:"example,omitempty"`

	// Level and Category locate the word in the catalog hierarchy. They are
	// filled by the loader from the word's position in the file.
	Level    string `yaml:"-" json:"level"`
	Category string `yaml:"-" json:"category"`
}

// Pack is the result of a pack request: a random sample of words plus the
// size of the pool it was drawn from, so callers can distinguish a small pool
// from a truncated request.
type Pack struct {
	Level          string
	Category       string
	Items          []WordItem
	TotalAvailable int
}

// Catalog is an immutable level → category → words lookup.
type Catalog struct {
	// levels maps level name → category name → words.
	levels map[string]map[string][]WordItem

	// byID indexes every word for direct lookup.
	byID map[string]WordItem

	// rng drives pack sampling. Injectable for deterministic tests.
	rng *rand.Rand
}

// Option is a functional option for configuring a [Catalog].
type Option func(*Catalog)

// WithRand sets the random source used for pack sampling. Tests use this to
// make sampling deterministic.
func WithRand(rng *rand.Rand) Option {
	return func(c *Catalog) { c.rng = rng }
}

// New builds a Catalog from the given level map. Word Level and Category
// fields are overwritten from their position in the map. Duplicate word IDs
// across the whole catalog are rejected.
func New(levels map[string]map[string][]WordItem, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		levels: make(map[string]map[string][]WordItem, len(levels)),
		byID:   make(map[string]WordItem),
	}
	for _, o := range opts {
		o(c)
	}

	for level, categories := range levels {
		c.levels[level] = make(map[string][]WordItem, len(categories))
		for category, words := range categories {
			placed := make([]WordItem, len(words))
			for i, w := range words {
				if w.ID == "" {
					return nil, fmt.Errorf("catalog: word %q in %s/%s has no id", w.Text, level, category)
				}
				if _, dup := c.byID[w.ID]; dup {
					return nil, fmt.Errorf("catalog: duplicate word id %q", w.ID)
				}
				w.Level = level
				w.Category = category
				placed[i] = w
				c.byID[w.ID] = w
			}
			c.levels[level][category] = placed
		}
	}
	return c, nil
}

// Levels returns the level names in sorted order.
func (c *Catalog) Levels() []string {
	levels := make([]string, 0, len(c.levels))
	for l := range c.levels {
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return levels
}

// Categories returns, for every level, the category names sorted
// alphabetically.
func (c *Catalog) Categories() map[string][]string {
	out := make(map[string][]string, len(c.levels))
	for level, categories := range c.levels {
		names := make([]string, 0, len(categories))
		for cat := range categories {
			names = append(names, cat)
		}
		slices.Sort(names)
		out[level] = names
	}
	return out
}

// Find returns the word with the given ID.
func (c *Catalog) Find(wordID string) (WordItem, bool) {
	w, ok := c.byID[wordID]
	return w, ok
}

// FindByText returns the first word whose text matches case-insensitively.
// Lookup order is deterministic (sorted by word ID).
func (c *Catalog) FindByText(text string) (WordItem, bool) {
	want := strings.ToLower(strings.TrimSpace(text))
	for _, id := range sortedKeys(c.byID) {
		if strings.ToLower(c.byID[id].Text) == want {
			return c.byID[id], true
		}
	}
	return WordItem{}, false
}

// Pack assembles a practice pack: up to limit words drawn randomly without
// replacement from the requested level, optionally narrowed to a single
// category. An empty category pools every category under the level.
//
// Unknown levels and categories are reported with [ErrUnknownLevel] and
// [ErrUnknownCategory] so callers can map them to client input errors rather
// than returning an empty pack.
func (c *Catalog) Pack(level, category string, limit int) (Pack, error) {
	categories, ok := c.levels[level]
	if !ok {
		return Pack{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownLevel, level, strings.Join(c.Levels(), ", "))
	}

	var pool []WordItem
	if category != "" {
		words, ok := categories[category]
		if !ok {
			return Pack{}, fmt.Errorf("%w: %q under level %q", ErrUnknownCategory, category, level)
		}
		pool = slices.Clone(words)
	} else {
		// Pool all categories in sorted order so the pre-shuffle pool is
		// deterministic.
		for _, cat := range sortedKeys(categories) {
			pool = append(pool, categories[cat]...)
		}
	}

	total := len(pool)
	if limit <= 0 || limit > total {
		limit = total
	}

	c.shuffle(pool)
	return Pack{
		Level:          level,
		Category:       category,
		Items:          pool[:limit],
		TotalAvailable: total,
	}, nil
}

func (c *Catalog) shuffle(words []WordItem) {
	swap := func(i, j int) { words[i], words[j] = words[j], words[i] }
	if c.rng != nil {
		c.rng.Shuffle(len(words), swap)
		return
	}
	rand.Shuffle(len(words), swap)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
