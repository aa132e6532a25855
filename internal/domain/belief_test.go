package domain

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func mustBelief(t *testing.T, name string, strength float64, opts ...BeliefOption) *Belief {
	t.Helper()
	b, err := NewBelief(name, strength, opts...)
	if err != nil {
		t.Fatalf("NewBelief(%q, %v) error: %v", name, strength, err)
	}
	return b
}

func exp(valence Valence, intensity float64) Experience {
	return Experience{Valence: valence, Intensity: intensity, Source: "s"}
}

func TestNewBelief_Validation(t *testing.T) {
	tests := []struct {
		name     string
		belief   string
		strength float64
		opts     []BeliefOption
		wantErr  bool
	}{
		{"valid", "b", 0.5, nil, false},
		{"valid zero", "b", 0, nil, false},
		{"valid one", "b", 1, nil, false},
		{"empty name", "", 0.5, nil, true},
		{"negative strength", "b", -0.1, nil, true},
		{"strength above one", "b", 1.1, nil, true},
		{"nan strength", "b", math.NaN(), nil, true},
		{"bad baseline", "b", 0.5, []BeliefOption{WithBaseline(2)}, true},
		{"zero threshold", "b", 0.5, []BeliefOption{WithExperienceThreshold(0)}, true},
		{"negative prior count", "b", 0.5, []BeliefOption{WithPriorExperienceCount(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBelief(tt.belief, tt.strength, tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBelief) {
					t.Errorf("expected ErrInvalidBelief, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewBelief_BaselineDefaultsToStrength(t *testing.T) {
	b := mustBelief(t, "b", 0.42)
	if b.BaselineStrength() != 0.42 {
		t.Errorf("baseline = %v, want 0.42", b.BaselineStrength())
	}
	if b.ExperienceThreshold() != DefaultExperienceThreshold {
		t.Errorf("threshold = %v, want %v", b.ExperienceThreshold(), DefaultExperienceThreshold)
	}
}

func TestExperienceWeight(t *testing.T) {
	tests := []struct {
		n         int
		threshold int
		want      float64
	}{
		{1, 1000, 1.0},
		{9, 1000, 1.0},
		{10, 1000, 0.5},
		{99, 1000, 0.5},
		{100, 1000, 0.2},
		{999, 1000, 0.2},
		{1000, 1000, 0.1},
		{5000, 1000, 0.1},
		{150, 120, 0.1},
	}

	for _, tt := range tests {
		got := ExperienceWeight(tt.n, tt.threshold)
		if got != tt.want {
			t.Errorf("ExperienceWeight(%d, %d) = %v, want %v", tt.n, tt.threshold, got, tt.want)
		}
	}
}

func TestTraumaScalingFactor(t *testing.T) {
	tests := []struct {
		name string
		e    Experience
		want float64
	}{
		{"negative at cutoff is ordinary", exp(ValenceNegative, 0.90), OrdinaryScaling},
		{"negative just above cutoff is trauma", exp(ValenceNegative, 0.9001), TraumaScaling},
		{"negative max is trauma", exp(ValenceNegative, 1.0), TraumaScaling},
		{"positive max is ordinary", exp(ValencePositive, 1.0), OrdinaryScaling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TraumaScalingFactor(tt.e); got != tt.want {
				t.Errorf("TraumaScalingFactor() = %v, want %v", got, tt.want)
			}
		})
	}

	ratio := TraumaScalingFactor(exp(ValenceNegative, 0.9001)) / TraumaScalingFactor(exp(ValenceNegative, 0.90))
	if math.Abs(ratio-50) > epsilon {
		t.Errorf("trauma jump ratio = %v, want 50", ratio)
	}
}

func TestUpdateFromExperience_TraumaDiscontinuity(t *testing.T) {
	ordinary := mustBelief(t, "b", 0.5)
	trauma := mustBelief(t, "b", 0.5)

	ordinary.UpdateFromExperience(exp(ValenceNegative, 0.90), DefaultLossAversionFactor)
	trauma.UpdateFromExperience(exp(ValenceNegative, 0.9001), DefaultLossAversionFactor)

	// -0.9 * 2 * 0.5 * 0.001
	if math.Abs(ordinary.Strength()-0.4991) > epsilon {
		t.Errorf("ordinary strength = %v, want 0.4991", ordinary.Strength())
	}
	// -0.9001 * 2 * 0.5 * 0.05
	if math.Abs(trauma.Strength()-0.454995) > epsilon {
		t.Errorf("trauma strength = %v, want 0.454995", trauma.Strength())
	}
}

func TestElasticResistance(t *testing.T) {
	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1.0},
		{0.099, 1.0},
		{0.1, 0.7},
		{0.299, 0.7},
		{0.3, 0.3},
		{0.9, 0.3},
	}

	for _, tt := range tests {
		if got := ElasticResistance(tt.distance); got != tt.want {
			t.Errorf("ElasticResistance(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestUpdateFromExperience_ElasticShrinksChange(t *testing.T) {
	// Same strength so adaptability matches; only the distance from baseline differs.
	near := mustBelief(t, "b", 0.5)
	mid := mustBelief(t, "b", 0.5, WithBaseline(0.35))
	far := mustBelief(t, "b", 0.5, WithBaseline(0.1))

	var deltas []float64
	for _, b := range []*Belief{near, mid, far} {
		before := b.Strength()
		b.UpdateFromExperience(exp(ValencePositive, 1.0), DefaultLossAversionFactor)
		deltas = append(deltas, b.Strength()-before)
	}

	if !(deltas[0] > deltas[1] && deltas[1] > deltas[2]) {
		t.Fatalf("expected shrinking increments, got %v", deltas)
	}
	if math.Abs(deltas[1]/deltas[0]-0.7) > 1e-6 {
		t.Errorf("mid/near ratio = %v, want 0.7", deltas[1]/deltas[0])
	}
	if math.Abs(deltas[2]/deltas[0]-0.3) > 1e-6 {
		t.Errorf("far/near ratio = %v, want 0.3", deltas[2]/deltas[0])
	}
}

func TestUpdateFromExperience_AppendsBeforeWeight(t *testing.T) {
	// Nine prior experiences plus the new one puts the count at 10, so the
	// update already uses the 0.5 weight.
	b := mustBelief(t, "b", 0.5, WithPriorExperienceCount(9))
	b.UpdateFromExperience(exp(ValencePositive, 1.0), DefaultLossAversionFactor)

	want := 0.5 + 1.0*0.5*0.001*0.5
	if math.Abs(b.Strength()-want) > epsilon {
		t.Errorf("strength = %v, want %v", b.Strength(), want)
	}
	if b.ExperienceCount() != 10 {
		t.Errorf("experience count = %d, want 10", b.ExperienceCount())
	}
	if len(b.Experiences()) != 1 {
		t.Errorf("recorded history = %d, want 1", len(b.Experiences()))
	}
}

func TestUpdateFromExperience_LossAversionScenario(t *testing.T) {
	b := mustBelief(t, "b", 0.6)
	b.UpdateFromExperience(exp(ValencePositive, 0.8), DefaultLossAversionFactor)
	if math.Abs(b.Strength()-0.60032) > epsilon {
		t.Fatalf("after positive: %v, want 0.60032", b.Strength())
	}

	b.UpdateFromExperience(exp(ValenceNegative, 0.8), DefaultLossAversionFactor)
	if math.Abs(b.Strength()-0.599680512) > epsilon {
		t.Errorf("after negative: %v, want 0.599680512", b.Strength())
	}
	if b.Strength() >= 0.6 {
		t.Errorf("loss aversion should leave strength below 0.6, got %v", b.Strength())
	}
}

func TestUpdateFromExperience_ClampsUnderRepeatedTrauma(t *testing.T) {
	down := mustBelief(t, "b", 0.05)
	up := mustBelief(t, "b", 0.999)

	for i := 0; i < 500; i++ {
		down.UpdateFromExperience(exp(ValenceNegative, 1.0), 100)
		up.UpdateFromExperience(exp(ValencePositive, 1.0), DefaultLossAversionFactor)

		if down.Strength() < 0 || down.Strength() > 1 {
			t.Fatalf("step %d: strength %v escaped [0,1]", i, down.Strength())
		}
		if up.Strength() < 0 || up.Strength() > 1 {
			t.Fatalf("step %d: strength %v escaped [0,1]", i, up.Strength())
		}
	}
	if down.Strength() != 0 {
		t.Errorf("expected repeated trauma to floor at 0, got %v", down.Strength())
	}
}

func TestApplyElasticRecovery(t *testing.T) {
	tests := []struct {
		name     string
		strength float64
		baseline float64
		want     float64
	}{
		{"inside deadband unchanged", 0.54, 0.5, 0.54},
		{"above baseline moves down", 0.7, 0.5, 0.69},
		{"below baseline moves up", 0.2, 0.5, 0.21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBelief(t, "b", tt.strength, WithBaseline(tt.baseline))
			b.ApplyElasticRecovery(DefaultRecoveryFactor)
			if math.Abs(b.Strength()-tt.want) > epsilon {
				t.Errorf("strength = %v, want %v", b.Strength(), tt.want)
			}
		})
	}
}

func TestNudge_Clamps(t *testing.T) {
	b := mustBelief(t, "b", 0.9)
	b.Nudge(0.5)
	if b.Strength() != 1 {
		t.Errorf("strength = %v, want 1", b.Strength())
	}
	b.Nudge(-3)
	if b.Strength() != 0 {
		t.Errorf("strength = %v, want 0", b.Strength())
	}
}
