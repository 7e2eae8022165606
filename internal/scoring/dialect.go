package scoring

// dialectBoost and dialectCap bound the reward for an acceptable regional
// variant. The cap keeps a variant from outscoring a textbook production.
const (
	dialectBoost = 0.15
	dialectCap   = 0.95
)

// dialectVariants maps an expected articulator class to the detected classes
// that count as acceptable regional pronunciations of it. A child producing
// any of these must never score worse than they would against their own
// dialect's norm; that is a hard product requirement, not a tunable default.
var dialectVariants = map[string]map[string]bool{
	"th": {"d": true, "t": true},
	"r":  {"w": true, "vowel": true},
	"ng": {"n": true},
}

// Adjuster rewrites confidences for recognized dialect variants. It is
// stateless and safe for concurrent use.
type Adjuster struct{}

// Acceptable reports whether detected is a recognized dialect variant of
// expected. Classes are compared as-is; callers pass simplified articulator
// classes, not raw ARPABET symbols.
func (Adjuster) Acceptable(expected, detected string) bool {
	return dialectVariants[expected][detected]
}

// Adjust boosts confidence by dialectBoost, capped at dialectCap, when
// detected is an acceptable variant of expected. Unrecognized pairs pass
// through unchanged. The result is never lower than the input.
func (a Adjuster) Adjust(expected, detected string, confidence float64) float64 {
	if !a.Acceptable(expected, detected) {
		return confidence
	}
	boosted := confidence + dialectBoost
	if boosted > dialectCap {
		boosted = dialectCap
	}
	if boosted < confidence {
		return confidence
	}
	return boosted
}
