package domain

import (
	"time"

	"github.com/google/uuid"
)

type BeliefSnapshot struct {
	Name                string  `json:"name"`
	Strength            float64 `json:"strength"`
	BaselineStrength    float64 `json:"baseline_strength"`
	ExperienceThreshold int     `json:"experience_threshold"`
	ExperienceCount     int     `json:"experience_count"`
}

// IdentitySnapshot is the persisted read model of an Identity.
type IdentitySnapshot struct {
	ID              uuid.UUID        `json:"id"`
	CoreLabel       string           `json:"core_label"`
	LossAversion    float64          `json:"loss_aversion"`
	EmotionsEnabled bool             `json:"emotions_enabled"`
	Mass            float64          `json:"mass"`
	Resistance      float64          `json:"resistance"`
	Beliefs         []BeliefSnapshot `json:"beliefs"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Snapshot captures beliefs in insertion order along with mass and resistance.
func (id *Identity) Snapshot() IdentitySnapshot {
	beliefs := make([]BeliefSnapshot, 0, len(id.order))
	for _, b := range id.Beliefs() {
		beliefs = append(beliefs, BeliefSnapshot{
			Name:                b.Name(),
			Strength:            b.Strength(),
			BaselineStrength:    b.BaselineStrength(),
			ExperienceThreshold: b.ExperienceThreshold(),
			ExperienceCount:     b.ExperienceCount(),
		})
	}
	return IdentitySnapshot{
		CoreLabel:       id.CoreLabel,
		LossAversion:    id.lossAversion(),
		EmotionsEnabled: id.emotions != nil,
		Mass:            id.Mass(),
		Resistance:      id.GravitationalResistance(),
		Beliefs:         beliefs,
	}
}

// RestoreIdentity rebuilds an Identity from a snapshot. Emotions are not
// attached; the caller decides from EmotionsEnabled.
func RestoreIdentity(s IdentitySnapshot) (*Identity, error) {
	id := NewIdentity(s.CoreLabel)
	if s.LossAversion > 0 {
		id.LossAversion = s.LossAversion
	}
	for _, bs := range s.Beliefs {
		threshold := bs.ExperienceThreshold
		if threshold == 0 {
			threshold = DefaultExperienceThreshold
		}
		b, err := NewBelief(bs.Name, bs.Strength,
			WithBaseline(bs.BaselineStrength),
			WithExperienceThreshold(threshold),
			WithPriorExperienceCount(bs.ExperienceCount),
		)
		if err != nil {
			return nil, err
		}
		id.AddBelief(b)
	}
	return id, nil
}
