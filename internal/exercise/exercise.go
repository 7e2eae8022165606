// Package exercise turns scored phonemes into an ordered practice plan.
//
// The selector ranks the sounds that need work (worst first), caps focus at a
// small fixed number so a child is never overwhelmed, and emits a fixed
// isolation → syllable → word progression per sound, bracketed by a breathing
// warm-up and a mouth-coordination cool-down. A session where every sound
// cleared the bar still gets actionable content: a celebration plus a
// challenge drill, never an empty plan.
package exercise

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/speakbright/speakbright/internal/feedback"
	"github.com/speakbright/speakbright/pkg/types"
)

// MaxFocus caps how many distinct sounds one session's plan may target.
const MaxFocus = 3

// Drill is one actionable practice item.
type Drill struct {
	// Type is one of warmup, articulation, coordination, celebration,
	// challenge.
	Type string `json:"type"`

	// Phoneme is the targeted articulator class; set for articulation drills
	// only.
	Phoneme string `json:"phoneme,omitempty"`

	// Level is the articulation progression stage: isolation, syllable, or
	// word.
	Level string `json:"level,omitempty"`

	Title       string `json:"title"`
	Instruction string `json:"instruction"`
	Repetitions int    `json:"repetitions,omitempty"`
}

// step is one stage of a phoneme's fixed drill progression.
type step struct {
	level       string
	instruction string
	repetitions int
}

// drills is the fixed per-phoneme exercise table, in progression order.
var drills = map[string][]step{
	"r": {
		{"isolation", "Say 'rrrrr' like a lion roaring! Hold it for 3 seconds. 🦁", 5},
		{"syllable", "Practice: 'ray, ray, ray' - Say it slowly 3 times!", 3},
		{"word", "Try these words: 'red', 'run', 'rain' - Take your time!", 2},
	},
	"s": {
		{"isolation", "Make a snake sound: 'sssss' - Let the air flow! 🐍", 5},
		{"syllable", "Practice: 'see, see, see' - Smile and say it!", 3},
		{"word", "Try: 'sun', 'sit', 'sea' - One at a time!", 2},
	},
	"th": {
		{"isolation", "Stick your tongue out gently and say 'thhhh'! 👅", 5},
		{"syllable", "Practice: 'tha, tha, tha' - Tongue peeks out!", 3},
		{"word", "Try: 'think', 'thank', 'three' - Go slow!", 2},
	},
	"l": {
		{"isolation", "Touch the roof of your mouth and say 'llll'! 🎵", 5},
		{"syllable", "Practice: 'la, la, la' - Tongue up high!", 3},
		{"word", "Try: 'like', 'let', 'look' - Nice and slow!", 2},
	},
	"f": {
		{"isolation", "Gently bite your lip and blow: 'ffff'! 🌬️", 5},
		{"syllable", "Practice: 'fay, fay, fay' - Feel the air!", 3},
		{"word", "Try: 'fun', 'find', 'fall' - Take your time!", 2},
	},
}

var breathingWarmups = []string{
	"Take a deep breath in... and blow it out slowly like a candle! 🕯️",
	"Breathe in through your nose, out through your mouth. Nice and easy! 🌬️",
	"Pretend to blow bubbles - take a big breath and blow gently! 🫧",
}

var coordinationDrills = []string{
	"Open your mouth wide like a lion, then close it. Do this 3 times! 🦁",
	"Stick your tongue out, then pull it back in. Try it 5 times! 👅",
	"Smile big, then make a fish face. Back and forth 3 times! 🐠",
}

var generalHomeTips = []string{
	"Practice during fun activities like playtime! 🎮",
	"Keep sessions short (5-10 minutes) and positive! ⏰",
	"Praise effort, not just perfection! 🌟",
	"Make silly faces in the mirror together! 🪞",
	"Turn practice into a game with rewards! 🎁",
}

var phonemeHomeTips = map[string]string{
	"r":  "Practice 'r' words during car rides - 'red car', 'race', 'road'!",
	"s":  "Find 's' words at the store - 'soap', 'salt', 'sandwich'!",
	"th": "Say 'th' words before meals - 'three spoons', 'thank you'!",
	"l":  "Sing songs with lots of 'l' sounds - 'la la la'!",
	"f":  "Blow bubbles or feathers while practicing 'f' sounds!",
}

// Option configures a [Selector].
type Option func(*Selector)

// WithSeed fixes the random source used for warm-up and coordination picks.
func WithSeed(seed int64) Option {
	return func(s *Selector) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// Selector builds practice plans from session scores. Safe for concurrent
// use.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a Selector configured with opts.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select builds the session's practice plan. Sounds below the corrective
// threshold are targeted worst-first, at most [MaxFocus] of them. Select
// never returns an empty plan.
func (s *Selector) Select(scores []types.PhonemeScore) []Drill {
	needs := needsPractice(scores)

	if len(needs) == 0 {
		return []Drill{
			{
				Type:        "celebration",
				Title:       "You're Amazing! 🌟",
				Instruction: "All your sounds are clear! Try a harder word next level!",
			},
			{
				Type:        "challenge",
				Title:       "Ready for More? 🚀",
				Instruction: "Try saying your word in a silly sentence!",
			},
		}
	}

	plan := []Drill{{
		Type:        "warmup",
		Title:       "Let's Warm Up! 🌟",
		Instruction: s.pick(breathingWarmups),
	}}

	for _, class := range focusClasses(needs) {
		for _, st := range drills[class] {
			plan = append(plan, Drill{
				Type:        "articulation",
				Phoneme:     class,
				Level:       st.level,
				Title:       fmt.Sprintf("Practice the '%s' sound", class),
				Instruction: st.instruction,
				Repetitions: st.repetitions,
			})
		}
	}

	plan = append(plan, Drill{
		Type:        "coordination",
		Title:       "Mouth Movement Practice! 💪",
		Instruction: s.pick(coordinationDrills),
	})
	return plan
}

// HomeTips returns parent-facing practice tips for an articulator class. The
// class-specific tip, when one exists, leads the list.
func HomeTips(class string) []string {
	tips := make([]string, 0, len(generalHomeTips)+1)
	if tip, ok := phonemeHomeTips[class]; ok {
		tips = append(tips, tip)
	}
	return append(tips, generalHomeTips...)
}

// needsPractice returns the scores below the corrective threshold.
func needsPractice(scores []types.PhonemeScore) []types.PhonemeScore {
	needs := make([]types.PhonemeScore, 0, len(scores))
	for _, ps := range scores {
		if ps.Confidence < feedback.Corrective {
			needs = append(needs, ps)
		}
	}
	return needs
}

// focusClasses returns the distinct drill-table classes among needs, sorted
// ascending by confidence (worst first) and capped at MaxFocus. Classes
// without a table entry produce no articulation drills; the encouragement
// layer still covers them.
func focusClasses(needs []types.PhonemeScore) []string {
	sorted := make([]types.PhonemeScore, len(needs))
	copy(sorted, needs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence < sorted[j].Confidence
	})

	seen := map[string]bool{}
	var focus []string
	for _, ps := range sorted {
		class := ps.Phoneme.Class
		if seen[class] || drills[class] == nil {
			continue
		}
		seen[class] = true
		focus = append(focus, class)
		if len(focus) == MaxFocus {
			break
		}
	}
	return focus
}

func (s *Selector) pick(pool []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pool[s.rng.Intn(len(pool))]
}
