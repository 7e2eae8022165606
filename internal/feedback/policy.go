// Package feedback renders per-phoneme confidences into child-safe,
// encouraging text.
//
// The policy is a pure function of confidence (and optionally the phoneme's
// articulator class): at or above the corrective threshold a specific
// articulation tip is permitted, below it only tier-appropriate generic
// encouragement may be emitted, and nothing ever names an error. Every output
// string passes through the banned-word [Filter] as the last step — including
// unexpected or custom text, not only templated strings.
package feedback

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/speakbright/speakbright/pkg/types"
)

// Fixed policy thresholds. Not configurable per user.
const (
	// Floor is the confidence below which only neutral encouragement is
	// permitted.
	Floor = 0.50

	// Corrective is the confidence at or above which specific articulation
	// guidance is permitted.
	Corrective = 0.75
)

// Tier is the encouragement level for a confidence value.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierTryAgain  Tier = "try_again"
	TierNeutral   Tier = "neutral"
)

// TierFor maps a confidence to its encouragement tier.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= 0.85:
		return TierExcellent
	case confidence >= 0.75:
		return TierGood
	case confidence >= 0.60:
		return TierTryAgain
	default:
		return TierNeutral
	}
}

// ArticulationTip is one phoneme's entry in the fixed guidance table: a
// child-friendly mouth-position description plus a visual cue.
type ArticulationTip struct {
	Tip           string `json:"tip"`
	Alternative   string `json:"alternative,omitempty"`
	VisualCue     string `json:"visual_cue"`
	MouthPosition string `json:"mouth_position"`
}

// genericTip is returned for phonemes with no table entry. A missing entry
// must never be a broken session for a child, so lookup degrades instead of
// erroring.
var genericTip = ArticulationTip{
	Tip:           "Let's practice this sound together!",
	VisualCue:     "🎯",
	MouthPosition: "default",
}

// articulationTips is the fixed per-phoneme guidance table, keyed by
// articulator class.
var articulationTips = map[string]ArticulationTip{
	"r": {
		Tip:           "Try curling your tongue back like a little slide!",
		Alternative:   "Let your tongue hide a bit inside your mouth.",
		VisualCue:     "🐛",
		MouthPosition: "tongue_back",
	},
	"s": {
		Tip:           "Smile a little and push the air forward like a snake!",
		Alternative:   "Let the air flow straight out.",
		VisualCue:     "🐍",
		MouthPosition: "teeth_together",
	},
	"th": {
		Tip:           "Gently peek your tongue between your teeth!",
		Alternative:   "Let your tongue say hello!",
		VisualCue:     "👅",
		MouthPosition: "tongue_between_teeth",
	},
	"l": {
		Tip:           "Touch the top of your mouth with your tongue tip!",
		Alternative:   "Your tongue wants to touch the ceiling!",
		VisualCue:     "🎵",
		MouthPosition: "tongue_to_roof",
	},
	"f": {
		Tip:           "Gently bite your bottom lip and blow air!",
		Alternative:   "Your top teeth touch your bottom lip softly.",
		VisualCue:     "🌬️",
		MouthPosition: "teeth_on_lip",
	},
	"v": {
		Tip:           "Just like 'f' but make your voice buzz like a bee!",
		Alternative:   "Your voice box makes a humming sound!",
		VisualCue:     "🐝",
		MouthPosition: "teeth_on_lip",
	},
}

// generalEncouragement is the neutral-tier pool. Never references a specific
// sound or error.
var generalEncouragement = []string{
	"Nice try! I love how hard you're working! 🌟",
	"Great effort! Let's keep going together! 💪",
	"You're learning — that's so cool! 🎉",
	"Every try helps your voice get stronger! 🦸",
	"Wow, you're doing awesome! Keep it up! ⭐",
	"I can see you trying really hard! That's amazing! 🌈",
}

// practiceEncouragement is the try-again-tier pool, keyed by articulator
// class with a default for unlisted sounds.
var practiceEncouragement = map[string]string{
	"r":  "Almost there! Let's make the 'r' sound a little stronger. 🦁",
	"s":  "Great try! Let's help the 's' sound sound even clearer. 🐍",
	"th": "Nice work! Let's practice the 'th' sound together. 👅",
	"l":  "Good job! Let's make the 'l' sound a bit clearer. 🎵",
	"f":  "Awesome effort! Let's work on the 'f' sound. 🌬️",
}

const practiceEncouragementDefault = "Let's practice that sound together! You've got this! 💫"

// Item is the rendered feedback for one scored phoneme.
type Item struct {
	// Phoneme is the simplified articulator class shown to the user.
	Phoneme string `json:"phoneme"`

	// Expected is the expected phoneme symbol.
	Expected string `json:"expected"`

	// Confidence is the normalized score this feedback was rendered from.
	Confidence float64 `json:"confidence"`

	Tip           string `json:"tip"`
	VisualCue     string `json:"visual_cue"`
	MouthPosition string `json:"mouth_position"`

	// NeedsPractice is true when confidence is below the corrective
	// threshold; it drives the exercise selector.
	NeedsPractice bool `json:"needs_practice"`

	Encouragement string `json:"encouragement"`
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithSeed fixes the random source used for pool selection so tests are
// deterministic.
func WithSeed(seed int64) EngineOption {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// Engine renders confidences into feedback text. Safe for concurrent use.
type Engine struct {
	filter *Filter

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an Engine whose output passes through filter.
func NewEngine(filter *Filter, opts ...EngineOption) *Engine {
	e := &Engine{
		filter: filter,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Items renders one feedback item per scored phoneme, in order. Confidences
// at or above the corrective threshold receive the phoneme's articulation
// tip; lower confidences receive tier-appropriate encouragement with no
// reference to the specific production.
func (e *Engine) Items(scores []types.PhonemeScore) []Item {
	items := make([]Item, len(scores))
	for i, ps := range scores {
		items[i] = e.item(ps)
	}
	return items
}

func (e *Engine) item(ps types.PhonemeScore) Item {
	class := ps.Phoneme.Class

	it := Item{
		Phoneme:       class,
		Expected:      ps.Phoneme.Expected,
		Confidence:    ps.Confidence,
		NeedsPractice: ps.Confidence < Corrective,
		Encouragement: e.Encouragement(ps.Confidence, class),
	}

	if ps.Confidence >= Corrective {
		tip := e.Tip(class)
		it.Tip = tip.Tip
		it.VisualCue = tip.VisualCue
		it.MouthPosition = tip.MouthPosition
	} else {
		it.Tip = e.Encouragement(ps.Confidence, class)
		it.VisualCue = "✨"
		it.MouthPosition = "neutral"
	}

	it.Tip = e.filter.Clean(it.Tip)
	it.Encouragement = e.filter.Clean(it.Encouragement)
	return it
}

// Tip returns the articulation table entry for an articulator class, or the
// generic entry when the class has none. Tip never fails.
func (e *Engine) Tip(class string) ArticulationTip {
	if tip, ok := articulationTips[class]; ok {
		return tip
	}
	return genericTip
}

// LookupTip returns the articulation table entry for an articulator class and
// reports whether the class has one.
func (e *Engine) LookupTip(class string) (ArticulationTip, bool) {
	tip, ok := articulationTips[class]
	return tip, ok
}

// Encouragement returns an age-appropriate message for the confidence tier.
// The neutral tier draws from the general pool and never names the sound.
func (e *Engine) Encouragement(confidence float64, class string) string {
	var msg string
	switch TierFor(confidence) {
	case TierExcellent:
		msg = fmt.Sprintf("Fantastic! Your '%s' sound is so clear! 🌟", class)
	case TierGood:
		msg = fmt.Sprintf("Great job on the '%s' sound! You're doing awesome! 🎉", class)
	case TierTryAgain:
		msg = practiceEncouragement[class]
		if msg == "" {
			msg = practiceEncouragementDefault
		}
	default:
		msg = e.pick(generalEncouragement)
	}
	return e.filter.Clean(msg)
}

// Overall returns the session-level encouragement for a 0-100 score.
func (e *Engine) Overall(score int) string {
	var msg string
	switch {
	case score >= 85:
		msg = "Wow! You're a superstar! Your voice is getting so strong! 🌟✨"
	case score >= 75:
		msg = "Great work today! You're making amazing progress! 🎉💪"
	case score >= 60:
		msg = "Nice job practicing! Every try makes you better! 🌈⭐"
	default:
		msg = "I love seeing you try! You're learning so much! Keep going! 🚀💫"
	}
	return e.filter.Clean(msg)
}

// Celebration names the sounds that beat the user's own baseline.
func (e *Engine) Celebration(improved []string) string {
	var msg string
	switch len(improved) {
	case 0:
		msg = "Keep practicing — you're doing great! 🌟"
	case 1:
		msg = fmt.Sprintf("Your '%s' sound got even better! Amazing! 🎉", improved[0])
	default:
		head := strings.Join(improved[:len(improved)-1], "', '")
		msg = fmt.Sprintf("Your '%s' and '%s' sounds improved! Wow! 🌈✨",
			head, improved[len(improved)-1])
	}
	return e.filter.Clean(msg)
}

// Clean exposes the engine's safety filter for response text assembled
// outside the engine.
func (e *Engine) Clean(s string) string {
	return e.filter.Clean(s)
}

func (e *Engine) pick(pool []string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pool[e.rng.Intn(len(pool))]
}
