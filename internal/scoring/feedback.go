package scoring

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// positiveFeedback is emitted when no rule fires. The feedback list is never
// empty.
const positiveFeedback = "Great progress!"

// ruleInput is what a feedback rule sees: the target, the raw hypothesis, and
// the computed component scores.
type ruleInput struct {
	target     Target
	hypothesis string
	result     Result
}

// feedbackRule is one entry in an ordered rule list. Rules are evaluated
// independently, not mutually exclusively, and always in declaration order so
// feedback is reproducible.
type feedbackRule struct {
	applies func(ruleInput) bool
	message func(ruleInput) string
}

func always(ruleInput) bool { return true }

// defaultRules are the generic rules applied to every word, in order:
// articulation, clarity, then stress/tempo.
var defaultRules = []feedbackRule{
	{
		applies: func(in ruleInput) bool { return in.result.PhonemeSimilarity < 0.8 },
		message: articulationHint,
	},
	{
		applies: func(in ruleInput) bool { return in.result.Accuracy < 0.85 },
		message: func(ruleInput) string { return "Pronounce the whole word more clearly." },
	},
	{
		applies: func(in ruleInput) bool { return in.result.Prosody < 0.8 },
		message: func(ruleInput) string { return "Keep the stress steady and hold an even tempo." },
	},
}

// defaultWordRules add word-specific coaching, keyed by the exact lowercased
// target word. Within a word the rules run in declaration order.
var defaultWordRules = map[string][]feedbackRule{
	"tere": {
		{
			applies: func(in ruleInput) bool { return in.result.PhonemeSimilarity < 0.9 },
			message: func(ruleInput) string {
				return "The 'r' trill is short — tap the tongue tip near the upper gum ridge."
			},
		},
		{
			applies: always,
			message: func(ruleInput) string {
				return "Lengthen the first syllable: ˈte.re (stress on the first syllable)."
			},
		},
	},
	"aitäh": {
		{
			applies: func(in ruleInput) bool { return in.result.PhonemeSimilarity < 0.9 },
			message: func(ruleInput) string {
				return "The 'ä' is more open and shorter than a plain 'e'."
			},
		},
		{
			applies: always,
			message: func(ruleInput) string {
				return "The second syllable carries the stress: ɑi̯ˈtæh."
			},
		},
	},
	"palun": {
		{
			applies: always,
			message: func(ruleInput) string {
				return "Keep both syllables equally long: ˈpɑ.lun."
			},
		},
	},
}

// feedback evaluates the generic rules, then any word-specific rules, and
// falls back to a single positive message when nothing fired.
func (e *Engine) feedback(target Target, hypothesis string, result Result) []string {
	in := ruleInput{target: target, hypothesis: hypothesis, result: result}

	var out []string
	for _, rule := range e.rules {
		if rule.applies(in) {
			out = append(out, rule.message(in))
		}
	}
	for _, rule := range e.wordRules[strings.ToLower(target.Word)] {
		if rule.applies(in) {
			out = append(out, rule.message(in))
		}
	}

	if len(out) == 0 {
		out = append(out, positiveFeedback)
	}
	return out
}

// articulationHint phrases the low-similarity hint depending on whether the
// hypothesis at least shares the target's phonetic shape. Double Metaphone
// code overlap separates "nearly there" from "different sound entirely".
func articulationHint(in ruleInput) string {
	if metaphoneOverlap(in.target.Text, in.hypothesis) {
		return "Close — the sounds differ slightly; sharpen the first syllable."
	}
	return "The sound shape differs from the target; listen to the sample and start with the first syllable."
}

// metaphoneOverlap reports whether any Double Metaphone code of any target
// token matches any code of any hypothesis token.
func metaphoneOverlap(target, hypothesis string) bool {
	tCodes := metaphoneCodes(target)
	for _, tok := range strings.Fields(strings.ToLower(hypothesis)) {
		p, s := matchr.DoubleMetaphone(tok)
		if p != "" {
			if _, ok := tCodes[p]; ok {
				return true
			}
		}
		if s != "" {
			if _, ok := tCodes[s]; ok {
				return true
			}
		}
	}
	return false
}

func metaphoneCodes(text string) map[string]struct{} {
	codes := make(map[string]struct{}, 4)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		p, s := matchr.DoubleMetaphone(tok)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}
