package emotion

import (
	"github.com/renaissancebro/AGI-seed/internal/domain"
)

// System holds one template per Kind and runs them over each experience. It
// implements domain.ExperienceProcessor.
type System struct {
	templates []*Template
	decayRate float64
}

func NewSystem() *System {
	s := &System{decayRate: DefaultDecayRate}
	for _, k := range Kinds {
		s.templates = append(s.templates, NewTemplate(k))
	}
	return s
}

var _ domain.ExperienceProcessor = (*System)(nil)

// ProcessExperience activates every template e triggers, collects modulation
// from the active ones, then decays all of them. A template can therefore
// shape the experience that triggered it.
func (s *System) ProcessExperience(e domain.Experience, b *domain.Belief) domain.Modulation {
	for _, t := range s.templates {
		if intensity := t.CheckTrigger(e); intensity > 0 {
			t.Activate(intensity, DefaultDuration)
		}
	}

	combined := domain.Modulation{}
	for _, t := range s.templates {
		if t.IsActive() {
			combined.Merge(t.Influence(b, e))
		}
	}

	s.Decay()
	return combined
}

// Decay runs one decay step on every template.
func (s *System) Decay() {
	for _, t := range s.templates {
		t.Decay(s.decayRate)
	}
}

// ActiveEmotions maps the name of each active template to its intensity.
func (s *System) ActiveEmotions() map[string]float64 {
	out := make(map[string]float64)
	for _, t := range s.templates {
		if t.IsActive() {
			out[t.Kind.String()] = t.Intensity
		}
	}
	return out
}

// Template returns the live template for k.
func (s *System) Template(k Kind) *Template {
	for _, t := range s.templates {
		if t.Kind == k {
			return t
		}
	}
	return nil
}

// TemplateState is a read-only view of one template.
type TemplateState struct {
	Kind           string  `json:"kind"`
	Intensity      float64 `json:"intensity"`
	ActiveDuration int     `json:"active_duration"`
}

func (s *System) State() []TemplateState {
	out := make([]TemplateState, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, TemplateState{
			Kind:           t.Kind.String(),
			Intensity:      t.Intensity,
			ActiveDuration: t.ActiveDuration,
		})
	}
	return out
}
