package emotion

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/renaissancebro/AGI-seed/internal/domain"
)

const (
	ShameDissonanceThreshold = 0.3
	ShameEmitThreshold       = 0.1
	ShameDecayRate           = 0.2

	// defaultDissonance is used when vectors cannot be compared.
	defaultDissonance  = 0.5
	beliefViolationTag = "belief:"
)

var ErrInvalidExposure = errors.New("invalid exposure level")

// neutralBeliefVector stands in for belief semantics when checking actions
// against held beliefs.
var neutralBeliefVector = []float64{0.5, 0.5, 0.5, 0.5}

// ShameAction is something the agent did or said, with how publicly it
// happened (0 private, 1 fully public).
type ShameAction struct {
	Content        string
	ExposureLevel  float64
	SemanticVector []float64
}

func NewShameAction(content string, exposure float64) (ShameAction, error) {
	if math.IsNaN(exposure) || exposure < 0 || exposure > 1 {
		return ShameAction{}, fmt.Errorf("%w: %v outside [0,1]", ErrInvalidExposure, exposure)
	}
	return ShameAction{
		Content:        content,
		ExposureLevel:  exposure,
		SemanticVector: EncodeAction(content),
	}, nil
}

// SemanticDissonance maps cosine similarity linearly from [-1,1] onto [1,0].
func SemanticDissonance(action, standard []float64) float64 {
	sim, ok := cosineSimilarity(action, standard)
	if !ok {
		return defaultDissonance
	}
	return clamp01((1 - sim) / 2)
}

func ShameIntensity(strength, dissonance, exposure, sensitivity float64) float64 {
	return clamp01(strength * dissonance * exposure * sensitivity)
}

type ShameEmotion struct {
	Intensity       float64 `json:"intensity"`
	SourceViolation string  `json:"source_violation"`
	Duration        int     `json:"duration"`
	ActiveDuration  int     `json:"active_duration"`
}

func NewShameEmotion(intensity float64, violation string) *ShameEmotion {
	d := max(1, int(intensity*5))
	return &ShameEmotion{
		Intensity:       intensity,
		SourceViolation: violation,
		Duration:        d,
		ActiveDuration:  d,
	}
}

// BeliefImpact is the (negative) change applied to the violated belief or
// standard.
func (s *ShameEmotion) BeliefImpact() float64   { return -s.Intensity * 0.1 }
func (s *ShameEmotion) AvoidanceDrive() float64 { return s.Intensity * 0.8 }

func (s *ShameEmotion) Decay(rate float64) {
	if s.ActiveDuration > 0 {
		s.ActiveDuration--
		return
	}
	s.Intensity *= 1 - rate
}

func (s *ShameEmotion) IsActive() bool {
	return s.Intensity > ActiveThreshold
}

type ShameResult struct {
	Emotion    *ShameEmotion      `json:"emotion,omitempty"`
	Dissonance map[string]float64 `json:"dissonance"`
}

type ShameState struct {
	Active            bool    `json:"active"`
	Intensity         float64 `json:"intensity"`
	Violation         string  `json:"violation,omitempty"`
	AvoidanceDrive    float64 `json:"avoidance_drive,omitempty"`
	DurationRemaining int     `json:"duration_remaining,omitempty"`
}

// ShameEngine evaluates actions against an identity's standards and beliefs.
type ShameEngine struct {
	identity    *domain.Identity
	sensitivity float64
	buffer      func(float64) float64

	standards []*domain.InternalizedStandard
	current   *ShameEmotion
}

func NewShameEngine(id *domain.Identity, sensitivity float64) *ShameEngine {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	return &ShameEngine{identity: id, sensitivity: sensitivity}
}

// SetBuffer installs a function applied to the peak shame intensity before
// the emit threshold is checked. Pride uses it to soften shame.
func (s *ShameEngine) SetBuffer(fn func(float64) float64) {
	s.buffer = fn
}

// AddStandard registers std, replacing any standard with the same name. A
// standard without a vector is encoded from its name and description.
func (s *ShameEngine) AddStandard(std *domain.InternalizedStandard) {
	if len(std.SemanticVector) == 0 {
		std.SemanticVector = EncodeStandard(std.Name, std.Description)
	}
	for i, existing := range s.standards {
		if existing.Name == std.Name {
			s.standards[i] = std
			return
		}
	}
	s.standards = append(s.standards, std)
}

func (s *ShameEngine) Standards() []*domain.InternalizedStandard {
	out := make([]*domain.InternalizedStandard, len(s.standards))
	copy(out, s.standards)
	return out
}

// PerformAction checks action against every standard and every belief and
// reacts to the worst violation.
func (s *ShameEngine) PerformAction(action ShameAction) ShameResult {
	res := ShameResult{Dissonance: make(map[string]float64, len(s.standards))}

	var worst string
	var peak float64
	for _, std := range s.standards {
		d := SemanticDissonance(action.SemanticVector, std.SemanticVector)
		res.Dissonance[std.Name] = d
		if d <= ShameDissonanceThreshold {
			continue
		}
		if i := ShameIntensity(std.Strength, d, action.ExposureLevel, s.sensitivity); i > peak {
			peak = i
			worst = std.Name
		}
	}

	for _, b := range s.identity.Beliefs() {
		d := SemanticDissonance(action.SemanticVector, neutralBeliefVector)
		if d <= ShameDissonanceThreshold {
			continue
		}
		if i := ShameIntensity(b.Strength(), d, action.ExposureLevel, s.sensitivity); i > peak {
			peak = i
			worst = beliefViolationTag + b.Name()
		}
	}

	if s.buffer != nil {
		peak = s.buffer(peak)
	}
	if peak <= ShameEmitThreshold {
		return res
	}

	emo := NewShameEmotion(peak, worst)
	s.current = emo
	res.Emotion = emo
	s.applyEffects(emo)
	return res
}

func (s *ShameEngine) applyEffects(emo *ShameEmotion) {
	impact := emo.BeliefImpact()

	if name, ok := strings.CutPrefix(emo.SourceViolation, beliefViolationTag); ok {
		_ = s.identity.AdjustBelief(name, impact)
		return
	}
	for _, std := range s.standards {
		if std.Name == emo.SourceViolation {
			std.Strength = math.Max(0, std.Strength+impact)
			return
		}
	}
}

func (s *ShameEngine) Decay() {
	if s.current == nil {
		return
	}
	if s.current.IsActive() {
		s.current.Decay(ShameDecayRate)
		return
	}
	s.current = nil
}

func (s *ShameEngine) Current() *ShameEmotion {
	return s.current
}

func (s *ShameEngine) State() ShameState {
	if s.current == nil || !s.current.IsActive() {
		return ShameState{}
	}
	return ShameState{
		Active:            true,
		Intensity:         s.current.Intensity,
		Violation:         s.current.SourceViolation,
		AvoidanceDrive:    s.current.AvoidanceDrive(),
		DurationRemaining: s.current.ActiveDuration,
	}
}
