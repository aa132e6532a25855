package domain

import (
	"errors"
	"fmt"
	"math"
)

// DefaultLossAversionFactor makes a negative experience weigh twice as much
// as a positive one of the same intensity.
const DefaultLossAversionFactor = 2.0

var ErrInvalidExperience = errors.New("invalid experience")

type Valence string

const (
	ValencePositive Valence = "positive"
	ValenceNegative Valence = "negative"
)

func ValidValence(v string) bool {
	switch Valence(v) {
	case ValencePositive, ValenceNegative:
		return true
	}
	return false
}

// Experience is a single stimulus routed into a belief. It is a value type and
// is never mutated once recorded.
type Experience struct {
	Content   string  `json:"content"`
	Valence   Valence `json:"valence"`
	Intensity float64 `json:"intensity"`
	Source    string  `json:"source"`
}

// NewExperience builds a validated experience.
func NewExperience(content string, valence Valence, intensity float64, source string) (Experience, error) {
	e := Experience{
		Content:   content,
		Valence:   valence,
		Intensity: intensity,
		Source:    source,
	}
	if err := e.Validate(); err != nil {
		return Experience{}, err
	}
	return e, nil
}

func (e Experience) Validate() error {
	if !ValidValence(string(e.Valence)) {
		return fmt.Errorf("%w: valence %q", ErrInvalidExperience, e.Valence)
	}
	if math.IsNaN(e.Intensity) || e.Intensity < 0 || e.Intensity > 1 {
		return fmt.Errorf("%w: intensity %v outside [0,1]", ErrInvalidExperience, e.Intensity)
	}
	return nil
}

func (e Experience) IsNegative() bool {
	return e.Valence == ValenceNegative
}

// WeightedValue returns +intensity for positive experiences and
// -intensity*lossAversion for negative ones.
func (e Experience) WeightedValue(lossAversion float64) float64 {
	if e.Valence == ValencePositive {
		return e.Intensity
	}
	return -e.Intensity * lossAversion
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func validUnit(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x <= 1
}
