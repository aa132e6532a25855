package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrInvalidAspiration = errors.New("invalid aspiration")
	ErrInvalidStandard   = errors.New("invalid standard")
)

type IntegrationStyle string

const (
	// IntegrationMandatory aspirations are identity-defining: missing them
	// costs strength.
	IntegrationMandatory IntegrationStyle = "mandatory"
	IntegrationOptional  IntegrationStyle = "optional"
)

func ValidIntegrationStyle(s string) bool {
	switch IntegrationStyle(s) {
	case IntegrationMandatory, IntegrationOptional:
		return true
	}
	return false
}

// Aspiration is a goal direction the Pride engine measures actions against.
type Aspiration struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	DomainVector     []float64        `json:"domain_vector"`
	Strength         float64          `json:"strength"`
	IntegrationStyle IntegrationStyle `json:"integration_style"`
}

// NewAspiration validates the fields and normalizes the domain vector to
// unit length.
func NewAspiration(name, description string, domainVector []float64, strength float64, style IntegrationStyle) (*Aspiration, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidAspiration)
	}
	if !ValidIntegrationStyle(string(style)) {
		return nil, fmt.Errorf("%w: integration_style must be 'mandatory' or 'optional'", ErrInvalidAspiration)
	}
	if !validUnit(strength) {
		return nil, fmt.Errorf("%w: strength %v outside [0,1]", ErrInvalidAspiration, strength)
	}
	return &Aspiration{
		Name:             name,
		Description:      description,
		DomainVector:     NormalizeVector(domainVector),
		Strength:         strength,
		IntegrationStyle: style,
	}, nil
}

func (a *Aspiration) Mandatory() bool {
	return a.IntegrationStyle == IntegrationMandatory
}

// InternalizedStandard is a rule the agent holds about its own conduct.
type InternalizedStandard struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Strength       float64   `json:"strength"`
	SemanticVector []float64 `json:"semantic_vector"`
}

func NewInternalizedStandard(name, description string, strength float64, semanticVector []float64) (*InternalizedStandard, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidStandard)
	}
	if !validUnit(strength) {
		return nil, fmt.Errorf("%w: strength %v outside [0,1]", ErrInvalidStandard, strength)
	}
	return &InternalizedStandard{
		Name:           name,
		Description:    description,
		Strength:       strength,
		SemanticVector: semanticVector,
	}, nil
}

// NormalizeVector returns a unit-length copy of v. Empty and zero vectors are
// returned unchanged.
func NormalizeVector(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}
	out := make([]float64, len(v))
	copy(out, v)
	norm := floats.Norm(out, 2)
	if norm == 0 {
		return out
	}
	floats.Scale(1/norm, out)
	return out
}
