package scoring

// ProsodyScorer produces the prosody component of a pronunciation score.
//
// Neither implementation below performs real prosodic analysis; prosody
// scoring is a placeholder until an acoustic model is available. The seam is
// kept narrow — target, hypothesis, and the already-computed accuracy — so a
// real model can slot in without touching the engine.
type ProsodyScorer interface {
	// Score returns a prosody score in [0, 1].
	Score(target Target, hypothesis string, accuracy float64) float64
}

// prosodyBaseline is the fixed prosody score shared by both variants.
const prosodyBaseline = 0.7

// BaselineProsody always returns the fixed baseline of 0.7.
type BaselineProsody struct{}

// Score implements [ProsodyScorer].
func (BaselineProsody) Score(Target, string, float64) float64 {
	return prosodyBaseline
}

// HeuristicProsody nudges the baseline by ±0.1 depending on recognition
// accuracy: confident recognition suggests steady delivery, poor recognition
// the opposite. The result stays within [0.5, 0.9].
type HeuristicProsody struct{}

// Score implements [ProsodyScorer].
func (HeuristicProsody) Score(_ Target, _ string, accuracy float64) float64 {
	switch {
	case accuracy > 0.8:
		return min(0.9, prosodyBaseline+0.1)
	case accuracy < 0.6:
		return max(0.5, prosodyBaseline-0.1)
	default:
		return prosodyBaseline
	}
}
