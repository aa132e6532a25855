package domain

import (
	"errors"
	"fmt"
)

var ErrBeliefNotFound = errors.New("belief not found")

// ExperienceProcessor is the hook an emotion system plugs into an Identity.
type ExperienceProcessor interface {
	ProcessExperience(e Experience, b *Belief) Modulation
}

// Identity aggregates beliefs into a gravitational mass. It is not safe for
// concurrent use; callers serialize access per identity.
type Identity struct {
	CoreLabel    string
	LossAversion float64

	beliefs  map[string]*Belief
	order    []string
	mass     float64
	emotions ExperienceProcessor
}

func NewIdentity(coreLabel string) *Identity {
	return &Identity{
		CoreLabel:    coreLabel,
		LossAversion: DefaultLossAversionFactor,
		beliefs:      make(map[string]*Belief),
	}
}

// AttachEmotions routes every integrated experience through p first.
func (id *Identity) AttachEmotions(p ExperienceProcessor) {
	id.emotions = p
}

func (id *Identity) Emotions() ExperienceProcessor {
	return id.emotions
}

// AddBelief inserts b, replacing any belief with the same name.
func (id *Identity) AddBelief(b *Belief) {
	if _, exists := id.beliefs[b.Name()]; !exists {
		id.order = append(id.order, b.Name())
	}
	id.beliefs[b.Name()] = b
	id.recalculateMass()
}

func (id *Identity) Belief(name string) (*Belief, bool) {
	b, ok := id.beliefs[name]
	return b, ok
}

// Beliefs returns beliefs in insertion order.
func (id *Identity) Beliefs() []*Belief {
	out := make([]*Belief, 0, len(id.order))
	for _, name := range id.order {
		out = append(out, id.beliefs[name])
	}
	return out
}

// IntegrateExperience updates the named belief. When emotions are attached the
// experience passes through them first; the returned modulation is reported
// but not applied. Use IntegrateModulatedExperience to apply it.
func (id *Identity) IntegrateExperience(e Experience, target string) (Modulation, error) {
	return id.integrate(e, target, false)
}

// IntegrateModulatedExperience is IntegrateExperience with the emotion
// modulation applied to the experience before the belief update.
func (id *Identity) IntegrateModulatedExperience(e Experience, target string) (Modulation, error) {
	return id.integrate(e, target, true)
}

func (id *Identity) integrate(e Experience, target string, applyModulation bool) (Modulation, error) {
	b, ok := id.beliefs[target]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBeliefNotFound, target)
	}

	var mod Modulation
	if id.emotions != nil {
		mod = id.emotions.ProcessExperience(e, b)
	}
	if applyModulation {
		e = ApplyModulation(e, mod)
	}

	b.UpdateFromExperience(e, id.lossAversion())
	id.recalculateMass()
	return mod, nil
}

// AdjustBelief nudges a belief directly, bypassing the experience pipeline.
func (id *Identity) AdjustBelief(name string, delta float64) error {
	b, ok := id.beliefs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBeliefNotFound, name)
	}
	b.Nudge(delta)
	id.recalculateMass()
	return nil
}

// ApplyElasticRecovery runs one recovery step on every belief.
func (id *Identity) ApplyElasticRecovery(recoveryFactor float64) {
	for _, b := range id.beliefs {
		b.ApplyElasticRecovery(recoveryFactor)
	}
	id.recalculateMass()
}

// ResetBeliefs returns every belief to its baseline and clears its history.
func (id *Identity) ResetBeliefs() {
	for _, b := range id.beliefs {
		b.reset()
	}
	id.recalculateMass()
}

func (id *Identity) Mass() float64 {
	return id.mass
}

// GravitationalResistance is mass squared.
func (id *Identity) GravitationalResistance() float64 {
	return id.mass * id.mass
}

func (id *Identity) lossAversion() float64 {
	if id.LossAversion <= 0 {
		return DefaultLossAversionFactor
	}
	return id.LossAversion
}

func (id *Identity) recalculateMass() {
	var total float64
	for _, name := range id.order {
		total += id.beliefs[name].Strength()
	}
	id.mass = total
}
