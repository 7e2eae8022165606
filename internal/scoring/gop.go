package scoring

// Goodness-of-Pronunciation substitution costs. The table rates how close a
// detected articulator class is to the expected one without a trained model:
// an exact match scores near the ceiling, a dialect variant just below it,
// and unrelated substitutions bottom out at the default.
const (
	gopExact     = 0.95
	gopDialect   = 0.92
	gopVowel     = 0.75
	gopConfusion = 0.70
	gopDefault   = 0.60

	// gopJitterBound is the half-width of the random perturbation added to
	// table-derived confidences for naturalism.
	gopJitterBound = 0.03
)

// confusionPairs holds known voicing and place-of-articulation confusions.
// Populated symmetrically by init.
var confusionPairs = map[[2]string]bool{}

func init() {
	pairs := [][2]string{
		{"p", "b"}, {"t", "d"}, {"k", "g"},
		{"f", "v"}, {"s", "z"},
		{"th", "f"}, {"th", "s"},
	}
	for _, p := range pairs {
		confusionPairs[p] = true
		confusionPairs[[2]string{p[1], p[0]}] = true
	}
}

// substitutionCost returns the base confidence for an (expected, detected)
// pair. Non-vowel classes are exact at the class level; vowels are exact only
// on the same symbol, so one vowel produced as another scores the vowel-vowel
// rate instead.
func substitutionCost(expectedSym, expectedClass, detectedSym, detectedClass string) float64 {
	switch {
	case expectedClass == detectedClass && (expectedClass != "vowel" || expectedSym == detectedSym):
		return gopExact
	case (Adjuster{}).Acceptable(expectedClass, detectedClass):
		return gopDialect
	case expectedClass == "vowel" && detectedClass == "vowel":
		return gopVowel
	case confusionPairs[[2]string{expectedClass, detectedClass}]:
		return gopConfusion
	default:
		return gopDefault
	}
}

// gopConfidence combines the substitution table with a min-max-normalized
// acoustic likelihood. likelihood is normalized against the [lo, hi] range
// observed across the whole utterance; a degenerate range (hi ≤ lo) carries
// no ranking information, so the table value stands alone. jitter is the
// caller-supplied perturbation, already bounded.
func gopConfidence(expectedSym, expectedClass, detectedSym, detectedClass string, likelihood, lo, hi, jitter float64) float64 {
	base := substitutionCost(expectedSym, expectedClass, detectedSym, detectedClass)
	if hi > lo {
		norm := (likelihood - lo) / (hi - lo)
		base = (base + norm) / 2
	}
	base += jitter

	if base < ConfidenceFloor {
		base = ConfidenceFloor
	}
	if base > ConfidenceCeiling {
		base = ConfidenceCeiling
	}
	return base
}
