package emotion

import (
	"math"

	"github.com/renaissancebro/AGI-seed/internal/domain"
)

// Kind identifies one of the basic emotion templates.
type Kind int

const (
	Fear Kind = iota
	Shame
	Comfort
	Pride
	Loneliness
)

// Kinds lists every template in processing order. Later kinds win when two
// templates emit the same modulation key.
var Kinds = []Kind{Fear, Shame, Comfort, Pride, Loneliness}

func (k Kind) String() string {
	switch k {
	case Fear:
		return "fear"
	case Shame:
		return "shame"
	case Comfort:
		return "comfort"
	case Pride:
		return "pride"
	case Loneliness:
		return "loneliness"
	}
	return "unknown"
}

const (
	DefaultDuration  = 3
	DefaultDecayRate = 0.3
	ActiveThreshold  = 0.05
)

// Template is the shared state machine behind every basic emotion: a trigger
// rule, an active window counted in steps, and a modulation effect.
type Template struct {
	Kind           Kind    `json:"-"`
	Intensity      float64 `json:"intensity"`
	ActiveDuration int     `json:"active_duration"`
}

func NewTemplate(k Kind) *Template {
	return &Template{Kind: k}
}

// CheckTrigger returns the intensity e would activate this template with, or
// 0 when it does not trigger.
func (t *Template) CheckTrigger(e domain.Experience) float64 {
	positive := e.Valence == domain.ValencePositive
	negative := e.Valence == domain.ValenceNegative

	switch t.Kind {
	case Fear:
		if negative && e.Intensity > 0.7 {
			return math.Min((e.Intensity-0.7)*2.0, 1.0)
		}
	case Shame:
		if negative && e.Intensity > 0.6 {
			return math.Min((e.Intensity-0.6)*1.5, 1.0)
		}
	case Comfort:
		if positive {
			return e.Intensity * 0.6
		}
	case Pride:
		if positive {
			return math.Min(e.Intensity*1.1, 1.0)
		}
	case Loneliness:
		if negative {
			return e.Intensity * 0.7
		}
	}
	return 0
}

// Activate raises intensity and duration. It never lowers either.
func (t *Template) Activate(intensity float64, duration int) {
	t.Intensity = math.Max(t.Intensity, intensity)
	if duration > t.ActiveDuration {
		t.ActiveDuration = duration
	}
}

// Decay counts down the active window. Intensity only fades on the step the
// window closes and on every step after it.
func (t *Template) Decay(rate float64) {
	if t.ActiveDuration > 0 {
		t.ActiveDuration--
		if t.ActiveDuration <= 0 {
			t.Intensity *= 1 - rate
		}
		return
	}
	t.Intensity *= 1 - rate
}

func (t *Template) IsActive() bool {
	return t.Intensity > ActiveThreshold
}

// Influence returns the modulation this template contributes for e. Inactive
// templates contribute nothing.
func (t *Template) Influence(b *domain.Belief, e domain.Experience) domain.Modulation {
	mod := domain.Modulation{}
	if !t.IsActive() {
		return mod
	}

	positive := e.Valence == domain.ValencePositive
	switch t.Kind {
	case Fear:
		if !positive {
			mod[domain.ModIntensityMultiplier] = 1 + t.Intensity*0.5
		}
		mod[domain.ModResistanceMultiplier] = 1 + t.Intensity*0.3
	case Shame:
		if positive {
			mod[domain.ModIntensityMultiplier] = 1 - t.Intensity*0.4
		} else {
			mod[domain.ModIntensityMultiplier] = 1 + t.Intensity*0.7
		}
	case Comfort:
		mod[domain.ModEmotionalDampening] = t.Intensity * 0.3
		if positive {
			mod[domain.ModIntensityMultiplier] = 1 + t.Intensity*0.2
		}
	case Pride:
		if positive {
			mod[domain.ModIntensityMultiplier] = 1 + t.Intensity*0.6
		} else {
			mod[domain.ModIntensityMultiplier] = 1 - t.Intensity*0.2
		}
	case Loneliness:
		mod[domain.ModSocialSensitivity] = 1 + t.Intensity*0.5
		mod[domain.ModIntensityMultiplier] = 1 + t.Intensity*0.3
	}
	return mod
}
