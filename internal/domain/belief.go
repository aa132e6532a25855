package domain

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultExperienceThreshold = 1000
	DefaultRecoveryFactor      = 0.01

	// TraumaIntensity is the cutoff above which a negative experience is
	// treated as traumatic.
	TraumaIntensity     = 0.9
	TraumaScaling       = 0.05
	OrdinaryScaling     = 0.001
	RecoveryDeadband    = 0.05
	ElasticNearDistance = 0.1
	ElasticFarDistance  = 0.3
)

var ErrInvalidBelief = errors.New("invalid belief")

// Belief is a named strength in [0,1]. Strength moves only through
// UpdateFromExperience, ApplyElasticRecovery and Nudge.
type Belief struct {
	name                string
	strength            float64
	baselineStrength    float64
	experienceThreshold int
	priorExperiences    int
	experiences         []Experience
}

type BeliefOption func(*Belief)

// WithBaseline overrides the baseline used for elastic recovery. It defaults
// to the initial strength.
func WithBaseline(baseline float64) BeliefOption {
	return func(b *Belief) { b.baselineStrength = baseline }
}

func WithExperienceThreshold(n int) BeliefOption {
	return func(b *Belief) { b.experienceThreshold = n }
}

// WithPriorExperienceCount seeds the experience count for beliefs restored
// from a snapshot, whose history records are not persisted.
func WithPriorExperienceCount(n int) BeliefOption {
	return func(b *Belief) { b.priorExperiences = n }
}

func NewBelief(name string, strength float64, opts ...BeliefOption) (*Belief, error) {
	b := &Belief{
		name:                name,
		strength:            strength,
		baselineStrength:    strength,
		experienceThreshold: DefaultExperienceThreshold,
	}
	for _, opt := range opts {
		opt(b)
	}

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidBelief)
	}
	if !validUnit(b.strength) {
		return nil, fmt.Errorf("%w: strength %v outside [0,1]", ErrInvalidBelief, b.strength)
	}
	if !validUnit(b.baselineStrength) {
		return nil, fmt.Errorf("%w: baseline %v outside [0,1]", ErrInvalidBelief, b.baselineStrength)
	}
	if b.experienceThreshold < 1 {
		return nil, fmt.Errorf("%w: experience threshold must be positive", ErrInvalidBelief)
	}
	if b.priorExperiences < 0 {
		return nil, fmt.Errorf("%w: prior experience count must not be negative", ErrInvalidBelief)
	}
	return b, nil
}

func (b *Belief) Name() string              { return b.name }
func (b *Belief) Strength() float64         { return b.strength }
func (b *Belief) BaselineStrength() float64 { return b.baselineStrength }
func (b *Belief) ExperienceThreshold() int  { return b.experienceThreshold }

// ExperienceCount includes experiences restored from persistence.
func (b *Belief) ExperienceCount() int {
	return b.priorExperiences + len(b.experiences)
}

// Experiences returns the recorded history in arrival order.
func (b *Belief) Experiences() []Experience {
	out := make([]Experience, len(b.experiences))
	copy(out, b.experiences)
	return out
}

// Adaptability is 1 - strength: strong beliefs move slowly.
func (b *Belief) Adaptability() float64 {
	return 1.0 - b.strength
}

func (b *Belief) DistanceFromBaseline() float64 {
	return math.Abs(b.strength - b.baselineStrength)
}

// UpdateFromExperience records the experience and moves strength. The
// experience is appended before the weight is computed, so the weight already
// counts it.
func (b *Belief) UpdateFromExperience(e Experience, lossAversion float64) {
	b.experiences = append(b.experiences, e)

	adaptability := b.Adaptability()
	weight := ExperienceWeight(b.ExperienceCount(), b.experienceThreshold)
	scaling := TraumaScalingFactor(e)

	rawChange := e.WeightedValue(lossAversion) * adaptability
	change := rawChange * scaling * weight
	change *= ElasticResistance(b.DistanceFromBaseline())

	b.strength = clamp01(b.strength + change)
}

// ApplyElasticRecovery moves strength one step of recoveryFactor toward the
// baseline when it has drifted more than RecoveryDeadband away.
func (b *Belief) ApplyElasticRecovery(recoveryFactor float64) {
	if b.DistanceFromBaseline() <= RecoveryDeadband {
		return
	}
	if b.strength > b.baselineStrength {
		b.strength = clamp01(b.strength - recoveryFactor)
	} else {
		b.strength = clamp01(b.strength + recoveryFactor)
	}
}

// Nudge shifts strength by delta, clamped. Emotion engines use it for their
// direct reinforcement and penalty effects.
func (b *Belief) Nudge(delta float64) {
	b.strength = clamp01(b.strength + delta)
}

// reset drops history and returns strength to baseline.
func (b *Belief) reset() {
	b.strength = b.baselineStrength
	b.priorExperiences = 0
	b.experiences = nil
}

// ExperienceWeight gives diminishing influence as a belief matures.
func ExperienceWeight(n, threshold int) float64 {
	switch {
	case n < 10:
		return 1.0
	case n < 100:
		return 0.5
	case n < threshold:
		return 0.2
	default:
		return 0.1
	}
}

// TraumaScalingFactor is a two-tier step: strongly negative experiences move
// a belief fifty times further than ordinary ones.
func TraumaScalingFactor(e Experience) float64 {
	if e.IsNegative() && e.Intensity > TraumaIntensity {
		return TraumaScaling
	}
	return OrdinaryScaling
}

// ElasticResistance damps change as a belief drifts from its baseline.
func ElasticResistance(distance float64) float64 {
	switch {
	case distance < ElasticNearDistance:
		return 1.0
	case distance < ElasticFarDistance:
		return 0.7
	default:
		return 0.3
	}
}
