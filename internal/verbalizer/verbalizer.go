package verbalizer

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("invalid tone profile")

// Profile picks a prefix for generated text by comparing a score against two
// cutoffs.
type Profile struct {
	Name       string  `yaml:"name" json:"name"`
	LowCutoff  float64 `yaml:"low_cutoff" json:"low_cutoff"`
	HighCutoff float64 `yaml:"high_cutoff" json:"high_cutoff"`
	LowPrefix  string  `yaml:"low_prefix" json:"low_prefix"`
	MidPrefix  string  `yaml:"mid_prefix" json:"mid_prefix"`
	HighPrefix string  `yaml:"high_prefix" json:"high_prefix"`
}

// UncertaintyProfile tones text by how unsure the sampler was. Higher scores
// mean less agreement between samples.
var UncertaintyProfile = Profile{
	Name:       "uncertainty",
	LowCutoff:  0.1,
	HighCutoff: 0.5,
	LowPrefix:  "",
	MidPrefix:  "I think this is likely, but not fully certain:\n",
	HighPrefix: "This may be unreliable, here's my best attempt:\n",
}

// IdentityProfile tones text by gravitational resistance. A light identity
// speaks tentatively; a heavy one speaks plainly.
var IdentityProfile = Profile{
	Name:       "identity",
	LowCutoff:  0.25,
	HighCutoff: 1.0,
	LowPrefix:  "I'm still working out where I stand on this:\n",
	MidPrefix:  "From what I've come to believe:\n",
	HighPrefix: "",
}

// ApplyTone prefixes text according to where score falls:
// score < LowCutoff, score < HighCutoff, or above.
func (p Profile) ApplyTone(text string, score float64) string {
	switch {
	case score < p.LowCutoff:
		return p.LowPrefix + text
	case score < p.HighCutoff:
		return p.MidPrefix + text
	default:
		return p.HighPrefix + text
	}
}

func (p Profile) Validate() error {
	if p.LowCutoff > p.HighCutoff {
		return fmt.Errorf("%w: low cutoff %v above high cutoff %v", ErrInvalidProfile, p.LowCutoff, p.HighCutoff)
	}
	return nil
}

// Profiles is the on-disk shape of a tone file.
type Profiles struct {
	Uncertainty *Profile `yaml:"uncertainty"`
	Identity    *Profile `yaml:"identity"`
}

// Load reads a YAML tone file. Profiles missing from the file keep their
// defaults. An empty path returns the defaults.
func Load(path string) (uncertainty, identity Profile, err error) {
	uncertainty, identity = UncertaintyProfile, IdentityProfile
	if path == "" {
		return uncertainty, identity, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return uncertainty, identity, fmt.Errorf("read tone profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes tone profiles from YAML, filling unset profiles with the
// defaults.
func Parse(data []byte) (uncertainty, identity Profile, err error) {
	uncertainty, identity = UncertaintyProfile, IdentityProfile

	var file Profiles
	if err := yaml.Unmarshal(data, &file); err != nil {
		return uncertainty, identity, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if file.Uncertainty != nil {
		uncertainty = *file.Uncertainty
	}
	if file.Identity != nil {
		identity = *file.Identity
	}
	if err := uncertainty.Validate(); err != nil {
		return UncertaintyProfile, IdentityProfile, err
	}
	if err := identity.Validate(); err != nil {
		return UncertaintyProfile, IdentityProfile, err
	}
	return uncertainty, identity, nil
}
