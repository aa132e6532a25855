package domain

type ModulationKey string

const (
	ModIntensityMultiplier  ModulationKey = "intensity_multiplier"
	ModResistanceMultiplier ModulationKey = "resistance_multiplier"
	ModEmotionalDampening   ModulationKey = "emotional_dampening"
	ModSocialSensitivity    ModulationKey = "social_sensitivity"
)

// SourceSocial marks experiences that social_sensitivity applies to.
const SourceSocial = "social"

// Modulation is the combined output of the active emotions for one
// experience. Absent keys are neutral.
type Modulation map[ModulationKey]float64

func (m Modulation) multiplier(k ModulationKey) float64 {
	if v, ok := m[k]; ok {
		return v
	}
	return 1.0
}

func (m Modulation) IntensityMultiplier() float64  { return m.multiplier(ModIntensityMultiplier) }
func (m Modulation) ResistanceMultiplier() float64 { return m.multiplier(ModResistanceMultiplier) }
func (m Modulation) SocialSensitivity() float64    { return m.multiplier(ModSocialSensitivity) }
func (m Modulation) EmotionalDampening() float64   { return m[ModEmotionalDampening] }

// Merge copies other into m. Keys already present are overwritten.
func (m Modulation) Merge(other Modulation) {
	for k, v := range other {
		m[k] = v
	}
}

// ApplyModulation returns a copy of e with its intensity reshaped by mod.
//
//	intensity × intensity_multiplier × (1 − emotional_dampening)
//	  × social_sensitivity     (social experiences only)
//	  ÷ resistance_multiplier  (positive experiences only)
//
// The result is clamped to [0,1].
func ApplyModulation(e Experience, mod Modulation) Experience {
	if len(mod) == 0 {
		return e
	}

	intensity := e.Intensity * mod.IntensityMultiplier() * (1 - mod.EmotionalDampening())
	if e.Source == SourceSocial {
		intensity *= mod.SocialSensitivity()
	}
	if e.Valence == ValencePositive {
		if r := mod.ResistanceMultiplier(); r > 0 {
			intensity /= r
		}
	}

	out := e
	out.Intensity = clamp01(intensity)
	return out
}
