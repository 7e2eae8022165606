package scoring

import "math"

// Confidence band bounds. The floor is a product decision: the system never
// reports a numeric confidence low enough to imply clear failure; below-floor
// evidence is routed through the neutral encouragement branch instead of a
// lower number.
const (
	ConfidenceFloor   = 0.50
	ConfidenceCeiling = 1.00
)

// Normalize clamps a raw score into [ConfidenceFloor, ConfidenceCeiling] and
// rounds it to two decimal places.
func Normalize(raw float64) float64 {
	if raw < ConfidenceFloor {
		raw = ConfidenceFloor
	}
	if raw > ConfidenceCeiling {
		raw = ConfidenceCeiling
	}
	return math.Round(raw*100) / 100
}
