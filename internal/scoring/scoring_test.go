package scoring_test

import (
	"math"
	"testing"

	"github.com/mkeskkula/haaldus/internal/scoring"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccuracy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		hypothesis string
		want       float64
	}{
		{"identical single word", "Tere", "Tere", 1},
		{"case mismatch counts as substitution", "Tere", "tere", 0},
		{"both empty", "", "", 1},
		{"empty target nonempty hypothesis", "", "tere", 0},
		{"empty hypothesis", "tere", "", 0},
		{"one of two tokens", "tere tulemast", "tere", 0.5},
		{"completely different", "tere", "kass", 0},
		{"extra tokens clamp to zero", "tere", "see on hoopis midagi muud", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := scoring.Accuracy(tt.target, tt.hypothesis)
			if !almostEqual(got, tt.want) {
				t.Errorf("Accuracy(%q, %q) = %v, want %v", tt.target, tt.hypothesis, got, tt.want)
			}
		})
	}
}

func TestPhonemeSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		hypothesis string
		want       float64
	}{
		{"identical", "tere", "tere", 1},
		{"identical ignoring case", "Tere", "tERE", 1},
		{"one edit of four", "tere", "pere", 0.75},
		{"both empty", "", "", 1},
		{"nothing in common", "tere", "kass", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := scoring.PhonemeSimilarity(tt.target, tt.hypothesis)
			if !almostEqual(got, tt.want) {
				t.Errorf("PhonemeSimilarity(%q, %q) = %v, want %v", tt.target, tt.hypothesis, got, tt.want)
			}
		})
	}
}

// The normalisation base is the target length, never the hypothesis, so the
// metric penalises a short target against a long hypothesis much harder than
// the reverse.
func TestPhonemeSimilarity_AsymmetricNormalisation(t *testing.T) {
	t.Parallel()

	short := scoring.PhonemeSimilarity("ab", "abcd")
	long := scoring.PhonemeSimilarity("abcd", "ab")

	if !almostEqual(short, 0) {
		t.Errorf("PhonemeSimilarity(ab, abcd) = %v, want 0", short)
	}
	if !almostEqual(long, 0.5) {
		t.Errorf("PhonemeSimilarity(abcd, ab) = %v, want 0.5", long)
	}
}

func TestScore_PerfectMatch(t *testing.T) {
	t.Parallel()

	e := scoring.NewEngine()
	r := e.Score(scoring.Target{Word: "Tere", Text: "Tere", IPA: "ˈte.re"}, "Tere")

	if r.Accuracy != 1 {
		t.Errorf("Accuracy = %v, want 1", r.Accuracy)
	}
	if r.PhonemeSimilarity != 1 {
		t.Errorf("PhonemeSimilarity = %v, want 1", r.PhonemeSimilarity)
	}
	// Heuristic prosody lifts the baseline when recognition is confident.
	if r.Prosody != 0.8 {
		t.Errorf("Prosody = %v, want 0.8", r.Prosody)
	}
	if r.Final != 0.96 {
		t.Errorf("Final = %v, want 0.96", r.Final)
	}
	if r.Word != "Tere" || r.TargetIPA != "ˈte.re" {
		t.Errorf("result echoes word %q ipa %q", r.Word, r.TargetIPA)
	}
}

func TestScore_BaselineProsody(t *testing.T) {
	t.Parallel()

	e := scoring.NewEngine(scoring.WithProsodyScorer(scoring.BaselineProsody{}))
	r := e.Score(scoring.Target{Word: "Tere", Text: "Tere"}, "Tere")

	if r.Prosody != 0.7 {
		t.Errorf("Prosody = %v, want 0.7", r.Prosody)
	}
	if r.Final != 0.94 {
		t.Errorf("Final = %v, want 0.94", r.Final)
	}
}

func TestScore_ComponentsAndFinalInRange(t *testing.T) {
	t.Parallel()

	e := scoring.NewEngine()
	pairs := []struct{ target, hypothesis string }{
		{"Tere", "Tere"},
		{"Tere", "tre"},
		{"Tere", ""},
		{"", "tere"},
		{"Aitäh", "aitah"},
		{"Kuidas läheb", "kuidas"},
		{"Palun", "midagi täiesti teistsugust siin"},
	}
	for _, p := range pairs {
		r := e.Score(scoring.Target{Word: p.target, Text: p.target}, p.hypothesis)
		for name, v := range map[string]float64{
			"accuracy": r.Accuracy,
			"phoneme":  r.PhonemeSimilarity,
			"prosody":  r.Prosody,
			"final":    r.Final,
		} {
			if v < 0 || v > 1 {
				t.Errorf("Score(%q, %q): %s = %v out of [0, 1]", p.target, p.hypothesis, name, v)
			}
		}
		if len(r.Feedback) == 0 {
			t.Errorf("Score(%q, %q): feedback is empty", p.target, p.hypothesis)
		}
	}
}

func TestHeuristicProsody(t *testing.T) {
	t.Parallel()

	h := scoring.HeuristicProsody{}
	tests := []struct {
		accuracy float64
		want     float64
	}{
		{1, 0.8},
		{0.81, 0.8},
		{0.8, 0.7},
		{0.6, 0.7},
		{0.59, 0.6},
		{0, 0.6},
	}
	for _, tt := range tests {
		if got := h.Score(scoring.Target{}, "", tt.accuracy); !almostEqual(got, tt.want) {
			t.Errorf("Score(accuracy=%v) = %v, want %v", tt.accuracy, got, tt.want)
		}
	}
}

func TestFeedback_PositiveFallback(t *testing.T) {
	t.Parallel()

	e := scoring.NewEngine()
	r := e.Score(scoring.Target{Word: "Vesi", Text: "Vesi"}, "Vesi")

	if len(r.Feedback) != 1 || r.Feedback[0] != "Great progress!" {
		t.Errorf("Feedback = %v, want the single positive message", r.Feedback)
	}
}

func TestFeedback_WordSpecificAlwaysFires(t *testing.T) {
	t.Parallel()

	e := scoring.NewEngine()
	r := e.Score(scoring.Target{Word: "Tere", Text: "Tere"}, "Tere")

	// Even a perfect attempt gets the stress coaching for "tere".
	want := "Lengthen the first syllable: ˈte.re (stress on the first syllable)."
	if len(r.Feedback) != 1 || r.Feedback[0] != want {
		t.Errorf("Feedback = %v, want [%q]", r.Feedback, want)
	}
}

func TestFeedback_PoorAttemptCollectsAllHints(t *testing.T) {
	t.Parallel()

	e := scoring.NewEngine()
	r := e.Score(scoring.Target{Word: "Tere", Text: "Tere"}, "kass")

	// Articulation, clarity, tempo, plus both tere-specific rules.
	if len(r.Feedback) != 5 {
		t.Fatalf("got %d feedback messages, want 5: %v", len(r.Feedback), r.Feedback)
	}
	want := "The sound shape differs from the target; listen to the sample and start with the first syllable."
	if r.Feedback[0] != want {
		t.Errorf("Feedback[0] = %q, want %q", r.Feedback[0], want)
	}
}
