package emotion

import (
	"errors"
	"math"
	"testing"

	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityWith(t *testing.T, beliefs map[string]float64, order ...string) *domain.Identity {
	t.Helper()
	id := domain.NewIdentity("test")
	for _, name := range order {
		b, err := domain.NewBelief(name, beliefs[name])
		require.NoError(t, err)
		id.AddBelief(b)
	}
	return id
}

func beliefStrength(t *testing.T, id *domain.Identity, name string) float64 {
	t.Helper()
	b, ok := id.Belief(name)
	require.True(t, ok, "belief %q", name)
	return b.Strength()
}

func TestEncodeBelief(t *testing.T) {
	b, err := domain.NewBelief("I am helpful and reliable", 0.5)
	require.NoError(t, err)
	v := EncodeBelief(b)
	assert.InDelta(t, 1/math.Sqrt2, v[0], delta)
	assert.InDelta(t, 1/math.Sqrt2, v[1], delta)
	assert.Equal(t, 0.0, v[2])
	assert.Equal(t, 0.0, v[3])

	none, err := domain.NewBelief("Routine brings order", 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, EncodeBelief(none))
}

func TestSemanticAlignment(t *testing.T) {
	assert.Equal(t, 0.5, SemanticAlignment(nil, [][]float64{{1, 0}}))
	assert.Equal(t, 0.5, SemanticAlignment([]float64{1, 0}, nil))
	assert.Equal(t, 0.5, SemanticAlignment([]float64{1, 0}, [][]float64{{1, 0, 0}, {0, 0}}))
	assert.InDelta(t, 1.0, SemanticAlignment([]float64{1, 0}, [][]float64{{2, 0}}), delta)
	assert.InDelta(t, 0.0, SemanticAlignment([]float64{1, 0}, [][]float64{{-1, 0}}), delta)
	assert.InDelta(t, 0.75, SemanticAlignment([]float64{1, 0}, [][]float64{{1, 0}, {0, 1}}), delta)
}

func TestComfortCalculators(t *testing.T) {
	assert.InDelta(t, 0.86, CertaintyLevel(0.9, 0.8), delta)
	assert.InDelta(t, 0.75, IdentityCoherence(1.5, 0), delta)
	assert.InDelta(t, 1.0, IdentityCoherence(4, 0), delta)
	assert.InDelta(t, 0.0, IdentityCoherence(4, 0.6), delta)
	assert.InDelta(t, 0.5, IdentityCoherence(2, 0.25), delta)
	assert.Equal(t, 1.0, ComfortIntensity(1, 1, 1, 2))

	interrupt, reason := DetectInterruption(DisruptionFactors{LowConfidence: 0.2, Unpredictability: 0.3, SemanticNovelty: 0.1})
	assert.False(t, interrupt)
	assert.Empty(t, reason)

	interrupt, reason = DetectInterruption(DisruptionFactors{LowConfidence: 0.6, Unpredictability: 0.8, SemanticNovelty: 0.4})
	assert.True(t, interrupt)
	assert.Equal(t, ReasonUnpredictability, reason)
}

func TestComfortEngine_EstablishBuildInterrupt(t *testing.T) {
	id := identityWith(t, map[string]float64{
		"I am helpful and reliable": 0.8,
		"Routine brings clarity":    0.7,
	}, "I am helpful and reliable", "Routine brings clarity")
	engine := NewComfortEngine(id, 1.0)

	res := engine.Process(NewComfortInput(
		"Another day of helping people with their questions",
		[]float64{0.8, 0.9, 0.7, 0.6}, 0.9, 0.8,
	))

	require.NotNil(t, res.Emotion, "aligned, certain input should establish comfort")
	assert.InDelta(t, 0.896, res.Metrics.Alignment, 1e-3)
	assert.InDelta(t, 0.86, res.Metrics.Certainty, delta)
	assert.InDelta(t, 0.75, res.Metrics.IdentityCoherence, delta)
	assert.InDelta(t, 0.578, res.Metrics.ComfortIntensity, 1e-3)
	assert.Equal(t, 5, res.Emotion.Duration)

	boost := res.Emotion.Intensity * 0.05
	assert.InDelta(t, 0.8+boost, beliefStrength(t, id, "I am helpful and reliable"), delta)
	assert.InDelta(t, 0.7+boost, beliefStrength(t, id, "Routine brings clarity"), delta)
	assert.InDelta(t, 1.5+2*boost, id.Mass(), delta)

	start := engine.Current().Intensity
	prev := start
	for i := 0; i < 4; i++ {
		engine.Decay()
		cur := engine.Current().Intensity
		assert.Greater(t, cur, prev, "comfort should build while stable (step %d)", i)
		prev = cur
	}
	assert.InDelta(t, start+0.10, prev, 1e-9)
	assert.Equal(t, 4, engine.State().TimeStable)

	// The last step of the window closes it without further growth.
	engine.Decay()
	assert.Equal(t, 0, engine.Current().ActiveDuration)
	assert.InDelta(t, prev, engine.Current().Intensity, delta)

	res = engine.Process(NewComfortInput(
		"Everything you believe about helping is wrong",
		[]float64{0.1, 0.0, 0.2, 0.1}, 0.4, 0.2,
	))
	assert.Nil(t, res.Emotion)
	assert.Contains(t, res.Effects, "comfort interrupted by "+ReasonUnpredictability)
	assert.Contains(t, res.Effects, "comfort state ended")
	assert.Nil(t, engine.Current())
	assert.False(t, engine.State().Active)

	assert.Len(t, engine.History(), 2)
}

func TestComfortEngine_HistoryIsBounded(t *testing.T) {
	engine := NewComfortEngine(domain.NewIdentity("x"), 1.0)
	for i := 0; i < 25; i++ {
		engine.Process(NewComfortInput("noise", []float64{1, 0, 0, 0}, 0.1, 0.1))
	}
	h := engine.History()
	require.Len(t, h, 20)
	assert.Equal(t, 5, h[0].Step)
	assert.Equal(t, 24, h[19].Step)
}

func TestComfortEngine_IdentityChangesLowerCoherence(t *testing.T) {
	engine := NewComfortEngine(domain.NewIdentity("x"), 1.0)
	engine.AddIdentityChange(0.5)
	assert.InDelta(t, 0.475, engine.RecentChanges(), delta)
	engine.AddIdentityChange(2)
	assert.InDelta(t, 0.95, engine.RecentChanges(), delta)
	assert.Equal(t, 0.3, engine.Dampen(0.3), "no comfort, no dampening")
}

func TestPrideAction_Validation(t *testing.T) {
	_, err := NewPrideAction("x", []float64{1}, Recognition("crowd"))
	assert.True(t, errors.Is(err, ErrInvalidRecognition))

	a, err := NewPrideAction("x", []float64{3, 4}, "")
	require.NoError(t, err)
	assert.Equal(t, RecognitionSelf, a.Recognition)
	assert.InDelta(t, 0.6, a.DomainVector[0], delta)
	assert.InDelta(t, 0.8, a.DomainVector[1], delta)
}

func TestAspirationAlignment_ClampsNegative(t *testing.T) {
	assert.Equal(t, 0.0, AspirationAlignment([]float64{1, 0}, []float64{-1, 0}))
	assert.Equal(t, 0.0, AspirationAlignment([]float64{1, 0}, []float64{1, 0, 0}))
	assert.InDelta(t, 1.0, AspirationAlignment([]float64{1, 0}, []float64{5, 0}), delta)
}

func TestPrideEngine_AchievementBoostsAspirationAndRelatedBeliefs(t *testing.T) {
	id := identityWith(t, map[string]float64{
		"Creative work matters": 0.5,
		"I am precise":          0.5,
	}, "Creative work matters", "I am precise")
	engine := NewPrideEngine(id, 1.0)

	asp, err := domain.NewAspiration("Creative Expression", "", []float64{1.0, 0.3, 0.5, 0.2}, 0.7, domain.IntegrationOptional)
	require.NoError(t, err)
	engine.AddAspiration(asp)

	action, err := NewPrideAction("Created beautiful artwork", []float64{0.9, 0.2, 0.4, 0.1}, RecognitionPeer)
	require.NoError(t, err)
	res := engine.Achieve(action)

	require.NotNil(t, res.Emotion)
	assert.InDelta(t, 0.9946, res.Alignments["Creative Expression"], 1e-3)
	assert.Equal(t, 1.0, res.Emotion.Intensity)
	assert.Equal(t, 4, res.Emotion.Duration)
	assert.Equal(t, "Creative Expression", res.Emotion.Aspiration)

	assert.InDelta(t, 0.85, asp.Strength, delta)
	assert.InDelta(t, 0.545, beliefStrength(t, id, "Creative work matters"), delta)
	assert.Equal(t, 0.5, beliefStrength(t, id, "I am precise"))

	assert.InDelta(t, 0.6, engine.State().ShameBuffer, delta)
	assert.InDelta(t, 0.4, engine.BufferShame(1.0), delta)
	assert.Len(t, engine.Recent(), 1)
}

func TestPrideEngine_MandatoryFailurePenalty(t *testing.T) {
	id := identityWith(t, map[string]float64{
		"I value technical accuracy": 0.6,
	}, "I value technical accuracy")
	engine := NewPrideEngine(id, 1.0)

	asp, err := domain.NewAspiration("Technical Mastery", "", []float64{0, 1, 0, 0}, 0.8, domain.IntegrationMandatory)
	require.NoError(t, err)
	engine.AddAspiration(asp)

	action, err := NewPrideAction("Painted a mural", []float64{1, 0, 0, 0}, RecognitionSelf)
	require.NoError(t, err)
	res := engine.Achieve(action)

	assert.Nil(t, res.Emotion)
	assert.Contains(t, res.Effects, "mandatory aspiration missed: Technical Mastery")
	assert.InDelta(t, 0.74, asp.Strength, delta)
	assert.InDelta(t, 0.57, beliefStrength(t, id, "I value technical accuracy"), delta)
}

func TestPrideEngine_OptionalMissIsTolerated(t *testing.T) {
	engine := NewPrideEngine(domain.NewIdentity("x"), 1.0)
	asp, err := domain.NewAspiration("Technical Mastery", "", []float64{0, 1, 0, 0}, 0.8, domain.IntegrationOptional)
	require.NoError(t, err)
	engine.AddAspiration(asp)

	action, err := NewPrideAction("Painted a mural", []float64{1, 0, 0, 0}, RecognitionSelf)
	require.NoError(t, err)
	res := engine.Achieve(action)

	assert.Nil(t, res.Emotion)
	assert.Empty(t, res.Effects)
	assert.Equal(t, 0.8, asp.Strength)
}

func TestPrideEmotion_Decay(t *testing.T) {
	p := NewPrideEmotion(0.5, "a", "b")
	require.Equal(t, 2, p.ActiveDuration)
	p.Decay(PrideDecayRate)
	p.Decay(PrideDecayRate)
	assert.Equal(t, 0.5, p.Intensity, "no fade while the window is open")
	p.Decay(PrideDecayRate)
	assert.InDelta(t, 0.425, p.Intensity, delta)
}

func TestShameEncoding(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 0, 0}, EncodeStandard("Always Stay Calm", "I should always remain calm and composed"))
	assert.Equal(t, []float64{0, -1, 0, -1}, EncodeAction("You're stupid and wrong!"))
	assert.Equal(t, []float64{0, 0, -1, 0}, EncodeAction("I will lie to them"))
}

func TestSemanticDissonance(t *testing.T) {
	assert.InDelta(t, 0.0, SemanticDissonance([]float64{1, 0}, []float64{1, 0}), delta)
	assert.InDelta(t, 1.0, SemanticDissonance([]float64{1, 0}, []float64{-1, 0}), delta)
	assert.InDelta(t, 0.5, SemanticDissonance([]float64{1, 0}, []float64{0, 1}), delta)
	assert.Equal(t, 0.5, SemanticDissonance([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.5, SemanticDissonance([]float64{0, 0}, []float64{1, 0}))
}

func TestShameEngine_BeliefViolation(t *testing.T) {
	id := identityWith(t, map[string]float64{"I am calm": 0.8}, "I am calm")
	engine := NewShameEngine(id, 1.2)

	std, err := domain.NewInternalizedStandard("Always Stay Calm", "I should always remain calm and composed", 0.9, nil)
	require.NoError(t, err)
	engine.AddStandard(std)

	action, err := NewShameAction("You're stupid and wrong!", 0.8)
	require.NoError(t, err)
	res := engine.PerformAction(action)

	assert.InDelta(t, 0.5, res.Dissonance["Always Stay Calm"], delta)
	require.NotNil(t, res.Emotion)
	assert.Equal(t, "belief:I am calm", res.Emotion.SourceViolation)

	wantIntensity := 0.8 * (1 + 1/math.Sqrt2) / 2 * 0.8 * 1.2
	assert.InDelta(t, wantIntensity, res.Emotion.Intensity, delta)
	assert.Equal(t, 3, res.Emotion.Duration)
	assert.InDelta(t, 0.8-wantIntensity*0.1, beliefStrength(t, id, "I am calm"), delta)
	assert.InDelta(t, wantIntensity*0.8, engine.State().AvoidanceDrive, delta)
	assert.Equal(t, 0.9, std.Strength)
}

func TestShameEngine_StandardViolation(t *testing.T) {
	engine := NewShameEngine(domain.NewIdentity("x"), 1.0)
	std, err := domain.NewInternalizedStandard("Be honest", "", 0.9, nil)
	require.NoError(t, err)
	engine.AddStandard(std)

	action, err := NewShameAction("I will lie to them", 1.0)
	require.NoError(t, err)
	res := engine.PerformAction(action)

	require.NotNil(t, res.Emotion)
	assert.Equal(t, "Be honest", res.Emotion.SourceViolation)
	assert.InDelta(t, 0.9, res.Emotion.Intensity, delta)
	assert.InDelta(t, 0.81, std.Strength, delta)
}

func TestShameEngine_BufferSuppressesWeakShame(t *testing.T) {
	engine := NewShameEngine(domain.NewIdentity("x"), 1.0)
	std, err := domain.NewInternalizedStandard("Be honest", "", 0.9, nil)
	require.NoError(t, err)
	engine.AddStandard(std)
	engine.SetBuffer(func(i float64) float64 { return i * 0.1 })

	action, err := NewShameAction("I will lie to them", 1.0)
	require.NoError(t, err)
	res := engine.PerformAction(action)

	assert.Nil(t, res.Emotion)
	assert.Equal(t, 0.9, std.Strength)
}

func TestShameAction_Validation(t *testing.T) {
	_, err := NewShameAction("x", 1.5)
	assert.True(t, errors.Is(err, ErrInvalidExposure))
	_, err = NewShameAction("x", -0.1)
	assert.True(t, errors.Is(err, ErrInvalidExposure))
}
