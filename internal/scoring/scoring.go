// Package scoring implements the pronunciation scoring engine.
//
// A score combines three components computed from the target word and the
// recognised hypothesis text:
//
//   - Accuracy: 1 minus the word error rate of the hypothesis against the
//     target, where word error rate is a token-level edit distance normalised
//     by the number of target tokens.
//   - Phoneme similarity: 1 minus the character-level Levenshtein distance
//     between the lowercased strings, normalised by the target length. The
//     normalisation base is always the target, never the hypothesis, which
//     makes the metric asymmetric under length mismatch.
//   - Prosody: a placeholder heuristic behind the [ProsodyScorer] seam so a
//     real prosodic model can be substituted later.
//
// The final score is the weighted sum 0.4·accuracy + 0.4·phoneme +
// 0.2·prosody, rounded to two decimals.
package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Target describes the word being practised.
type Target struct {
	// Word is the display form of the word (e.g., "Tere").
	Word string

	// Text is the reference text the hypothesis is scored against. Usually
	// identical to Word for single-word practice.
	Text string

	// IPA is the target pronunciation in the International Phonetic Alphabet.
	IPA string
}

// Result is a complete pronunciation score. Component scores are rounded to
// two decimals; Final is the rounded weighted sum of the unrounded components.
type Result struct {
	Word              string   `json:"word"`
	TargetIPA         string   `json:"target_ipa"`
	Accuracy          float64  `json:"asr_accuracy"`
	PhonemeSimilarity float64  `json:"phoneme_similarity"`
	Prosody           float64  `json:"prosody"`
	Final             float64  `json:"final"`
	Feedback          []string `json:"feedback"`
}

// Engine scores pronunciation attempts. It is immutable after construction
// and safe for concurrent use.
type Engine struct {
	prosody   ProsodyScorer
	rules     []feedbackRule
	wordRules map[string][]feedbackRule
}

// Option is a functional option for configuring an [Engine].
type Option func(*Engine)

// WithProsodyScorer replaces the prosody scorer. Default: [HeuristicProsody].
func WithProsodyScorer(p ProsodyScorer) Option {
	return func(e *Engine) { e.prosody = p }
}

// NewEngine returns an Engine with the default feedback rule set.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		prosody:   HeuristicProsody{},
		rules:     defaultRules,
		wordRules: defaultWordRules,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Score evaluates hypothesis against target and returns the full scored
// result including feedback. Both target text and hypothesis may be empty;
// scoring degrades to zero components rather than failing.
func (e *Engine) Score(target Target, hypothesis string) Result {
	accuracy := Accuracy(target.Text, hypothesis)
	phoneme := PhonemeSimilarity(target.Text, hypothesis)
	prosody := clamp01(e.prosody.Score(target, hypothesis, accuracy))
	final := round2(0.4*accuracy + 0.4*phoneme + 0.2*prosody)

	r := Result{
		Word:              target.Word,
		TargetIPA:         target.IPA,
		Accuracy:          round2(accuracy),
		PhonemeSimilarity: round2(phoneme),
		Prosody:           round2(prosody),
		Final:             final,
	}
	r.Feedback = e.feedback(target, hypothesis, r)
	return r
}

// Accuracy computes max(0, 1 - WER(target, hypothesis)) where WER is the
// token-level edit distance between the whitespace-tokenised texts normalised
// by the number of target tokens. Tokens are compared exactly, case included;
// only [PhonemeSimilarity] folds case. The result is clamped to [0, 1].
//
// An empty target yields 0 unless the hypothesis is also empty, in which case
// there is nothing to get wrong and the accuracy is 1.
func Accuracy(target, hypothesis string) float64 {
	ref := strings.Fields(target)
	hyp := strings.Fields(hypothesis)
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 1
		}
		return 0
	}
	wer := float64(tokenEditDistance(ref, hyp)) / float64(len(ref))
	return clamp01(1 - wer)
}

// PhonemeSimilarity computes max(0, 1 - d/max(1, len(target))) where d is the
// case-insensitive character-level Levenshtein distance and len counts runes
// of the target. Normalising by the target length only is deliberate: the
// metric answers "how much of the target was realised", so a padded
// hypothesis and a truncated one degrade the score differently.
func PhonemeSimilarity(target, hypothesis string) float64 {
	t := strings.ToLower(target)
	h := strings.ToLower(hypothesis)
	d := matchr.Levenshtein(t, h)
	n := utf8.RuneCountInString(t)
	if n < 1 {
		n = 1
	}
	return clamp01(1 - float64(d)/float64(n))
}

// tokenEditDistance is the Levenshtein distance over token sequences.
// matchr scores strings character-wise only, so the token-level DP lives
// here; two rolling rows keep it O(min(len)) in space.
func tokenEditDistance(ref, hyp []string) int {
	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(hyp)]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
