package emotion

import (
	"fmt"
	"math"

	"github.com/renaissancebro/AGI-seed/internal/domain"
)

const (
	ComfortAlignmentThreshold = 0.6
	ComfortCertaintyThreshold = 0.7
	ComfortIntensityThreshold = 0.3
	ComfortInterruptThreshold = 0.3
	ComfortActiveThreshold    = 0.1
	ComfortDecayRate          = 0.05

	// neutralAlignment is reported when there is nothing to compare against.
	neutralAlignment   = 0.5
	comfortHistorySize = 20
)

// Interruption reasons.
const (
	ReasonSemanticNovelty  = "semantic_novelty"
	ReasonLowConfidence    = "low_confidence"
	ReasonUnpredictability = "unpredictability"
)

// ComfortInput is an incoming stimulus scored against the current beliefs.
type ComfortInput struct {
	Content        string
	SemanticVector []float64
	Confidence     float64
	Predictability float64
}

// NewComfortInput normalizes the vector and clamps confidence and
// predictability into [0,1].
func NewComfortInput(content string, semanticVector []float64, confidence, predictability float64) ComfortInput {
	return ComfortInput{
		Content:        content,
		SemanticVector: domain.NormalizeVector(semanticVector),
		Confidence:     clamp01(confidence),
		Predictability: clamp01(predictability),
	}
}

type DisruptionFactors struct {
	LowConfidence    float64 `json:"low_confidence"`
	Unpredictability float64 `json:"unpredictability"`
	SemanticNovelty  float64 `json:"semantic_novelty"`
}

func (d DisruptionFactors) Max() float64 {
	return math.Max(d.SemanticNovelty, math.Max(d.LowConfidence, d.Unpredictability))
}

// Disruption scores how much in could break an existing comfort state. Novelty
// is the complement of its alignment with the current beliefs.
func (in ComfortInput) Disruption(alignment float64) DisruptionFactors {
	return DisruptionFactors{
		LowConfidence:    1 - in.Confidence,
		Unpredictability: 1 - in.Predictability,
		SemanticNovelty:  clamp01(1 - alignment),
	}
}

// SemanticAlignment averages the cosine similarity of input with each belief
// vector, mapped from [-1,1] to [0,1]. Vectors of the wrong length or with
// zero norm are skipped.
func SemanticAlignment(input []float64, beliefVectors [][]float64) float64 {
	if len(input) == 0 || len(beliefVectors) == 0 {
		return neutralAlignment
	}

	var sum float64
	var n int
	for _, bv := range beliefVectors {
		sim, ok := cosineSimilarity(input, bv)
		if !ok {
			continue
		}
		sum += math.Max(0, (sim+1)/2)
		n++
	}
	if n == 0 {
		return neutralAlignment
	}
	return sum / float64(n)
}

func CertaintyLevel(confidence, predictability float64) float64 {
	return clamp01(confidence*0.6 + predictability*0.4)
}

// IdentityCoherence rewards a heavy identity and penalizes recent change.
func IdentityCoherence(mass, recentChanges float64) float64 {
	base := math.Min(1, mass/2)
	penalty := math.Min(1, recentChanges*2)
	return clamp01(base * (1 - penalty))
}

func ComfortIntensity(alignment, certainty, coherence, sensitivity float64) float64 {
	return clamp01(alignment * certainty * coherence * sensitivity)
}

// DetectInterruption reports whether the strongest disruption exceeds the
// interruption threshold and which factor it was.
func DetectInterruption(d DisruptionFactors) (bool, string) {
	peak := d.Max()
	if peak <= ComfortInterruptThreshold {
		return false, ""
	}
	switch peak {
	case d.SemanticNovelty:
		return true, ReasonSemanticNovelty
	case d.LowConfidence:
		return true, ReasonLowConfidence
	default:
		return true, ReasonUnpredictability
	}
}

// ComfortEmotion is an established comfort state. Unlike the other emotions
// it grows while undisturbed.
type ComfortEmotion struct {
	Intensity      float64 `json:"intensity"`
	Source         string  `json:"source"`
	CoherenceLevel float64 `json:"coherence_level"`
	Duration       int     `json:"duration"`
	ActiveDuration int     `json:"active_duration"`
	TimeStable     int     `json:"time_stable"`
}

func NewComfortEmotion(intensity float64, source string, coherence float64) *ComfortEmotion {
	d := max(1, int(intensity*10))
	return &ComfortEmotion{
		Intensity:      intensity,
		Source:         source,
		CoherenceLevel: coherence,
		Duration:       d,
		ActiveDuration: d,
	}
}

func (c *ComfortEmotion) BeliefReinforcement() float64    { return c.Intensity * 0.05 }
func (c *ComfortEmotion) EmotionalDampening() float64     { return c.Intensity * 0.4 }
func (c *ComfortEmotion) IdentityStabilityBoost() float64 { return c.Intensity * 0.6 }
func (c *ComfortEmotion) LearningModulation() float64     { return -c.Intensity * 0.2 }

func (c *ComfortEmotion) buildStability() {
	if c.ActiveDuration <= 0 {
		return
	}
	c.TimeStable++
	bonus := math.Min(0.1, float64(c.TimeStable)*0.01)
	c.Intensity = math.Min(1, c.Intensity+bonus)
}

// Decay spends one step of the active window building stability, or fades
// intensity once the window is spent.
func (c *ComfortEmotion) Decay(rate float64) {
	if c.ActiveDuration > 0 {
		c.ActiveDuration--
		c.buildStability()
		return
	}
	c.Intensity *= 1 - rate
}

// Interrupt knocks intensity down by 0.8×strength, resets stability and
// shortens the window by two steps.
func (c *ComfortEmotion) Interrupt(strength float64) {
	c.Intensity = math.Max(0, c.Intensity-strength*0.8)
	c.TimeStable = 0
	c.ActiveDuration = max(0, c.ActiveDuration-2)
}

func (c *ComfortEmotion) IsActive() bool {
	return c.Intensity > ComfortActiveThreshold
}

type ComfortMetrics struct {
	Alignment         float64 `json:"alignment"`
	Certainty         float64 `json:"certainty"`
	IdentityCoherence float64 `json:"identity_coherence"`
	ComfortIntensity  float64 `json:"comfort_intensity"`
}

type ComfortRecord struct {
	Content          string  `json:"input_content"`
	ComfortIntensity float64 `json:"comfort_intensity"`
	Alignment        float64 `json:"alignment"`
	Certainty        float64 `json:"certainty"`
	Coherence        float64 `json:"coherence"`
	Step             int     `json:"timestamp"`
}

type ComfortResult struct {
	Emotion *ComfortEmotion `json:"emotion,omitempty"`
	Metrics ComfortMetrics  `json:"metrics"`
	Effects []string        `json:"effects"`
}

type ComfortState struct {
	Active             bool    `json:"active"`
	Intensity          float64 `json:"intensity"`
	Source             string  `json:"source,omitempty"`
	CoherenceLevel     float64 `json:"coherence_level,omitempty"`
	TimeStable         int     `json:"time_stable,omitempty"`
	EmotionalDampening float64 `json:"emotional_dampening,omitempty"`
	IdentityStability  float64 `json:"identity_stability,omitempty"`
	DurationRemaining  int     `json:"duration_remaining,omitempty"`
	RecentChanges      float64 `json:"recent_changes"`
}

// ComfortEngine tracks comfort for one identity.
type ComfortEngine struct {
	identity    *domain.Identity
	sensitivity float64

	current       *ComfortEmotion
	recentChanges float64
	history       []ComfortRecord
	steps         int
}

func NewComfortEngine(id *domain.Identity, sensitivity float64) *ComfortEngine {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	return &ComfortEngine{identity: id, sensitivity: sensitivity}
}

// Process scores in against the identity. Comfort is established when
// alignment, certainty and intensity all clear their thresholds; otherwise an
// existing comfort state may be interrupted.
func (c *ComfortEngine) Process(in ComfortInput) ComfortResult {
	beliefs := c.identity.Beliefs()
	vectors := make([][]float64, 0, len(beliefs))
	for _, b := range beliefs {
		vectors = append(vectors, EncodeBelief(b))
	}

	alignment := SemanticAlignment(in.SemanticVector, vectors)
	certainty := CertaintyLevel(in.Confidence, in.Predictability)
	coherence := IdentityCoherence(c.identity.Mass(), c.recentChanges)
	intensity := ComfortIntensity(alignment, certainty, coherence, c.sensitivity)

	res := ComfortResult{
		Metrics: ComfortMetrics{
			Alignment:         alignment,
			Certainty:         certainty,
			IdentityCoherence: coherence,
			ComfortIntensity:  intensity,
		},
		Effects: []string{},
	}

	switch {
	case alignment >= ComfortAlignmentThreshold &&
		certainty >= ComfortCertaintyThreshold &&
		intensity > ComfortIntensityThreshold:
		emo := NewComfortEmotion(intensity, in.Content, coherence)
		c.current = emo
		res.Emotion = emo
		res.Effects = append(res.Effects, fmt.Sprintf("comfort established: %s", truncate(in.Content, 30)))
		c.applyEffects(emo)

	case c.current != nil:
		d := in.Disruption(alignment)
		if interrupt, reason := DetectInterruption(d); interrupt {
			c.current.Interrupt(d.Max())
			res.Effects = append(res.Effects, "comfort interrupted by "+reason)
			if !c.current.IsActive() {
				c.current = nil
				res.Effects = append(res.Effects, "comfort state ended")
			}
		}
	}

	c.record(res, in.Content)
	return res
}

func (c *ComfortEngine) applyEffects(emo *ComfortEmotion) {
	boost := emo.BeliefReinforcement()
	for _, b := range c.identity.Beliefs() {
		// Names come from the identity itself, so the lookup cannot fail.
		_ = c.identity.AdjustBelief(b.Name(), boost)
	}
	c.recentChanges *= 1 - emo.IdentityStabilityBoost()
}

func (c *ComfortEngine) record(res ComfortResult, content string) {
	rec := ComfortRecord{
		Content:   content,
		Alignment: res.Metrics.Alignment,
		Certainty: res.Metrics.Certainty,
		Coherence: res.Metrics.IdentityCoherence,
		Step:      c.steps,
	}
	if res.Emotion != nil {
		rec.ComfortIntensity = res.Emotion.Intensity
	}
	c.steps++
	c.history = append(c.history, rec)
	if len(c.history) > comfortHistorySize {
		c.history = c.history[len(c.history)-comfortHistorySize:]
	}
}

// Decay advances the current comfort state one step and drops it once it is
// no longer active.
func (c *ComfortEngine) Decay() {
	if c.current == nil {
		return
	}
	if c.current.IsActive() {
		c.current.Decay(ComfortDecayRate)
		return
	}
	c.current = nil
}

// AddIdentityChange records a disruption to the identity. Recent change
// lowers coherence and so the chance of comfort.
func (c *ComfortEngine) AddIdentityChange(magnitude float64) {
	c.recentChanges = math.Min(1, c.recentChanges+magnitude)
	c.recentChanges *= 0.95
}

// Dampen scales another emotion's intensity down while comfort is active.
func (c *ComfortEngine) Dampen(intensity float64) float64 {
	if c.current == nil || !c.current.IsActive() {
		return intensity
	}
	return math.Max(0, intensity*(1-c.current.EmotionalDampening()))
}

func (c *ComfortEngine) Current() *ComfortEmotion {
	return c.current
}

func (c *ComfortEngine) RecentChanges() float64 {
	return c.recentChanges
}

// History returns up to the last 20 evaluations, oldest first.
func (c *ComfortEngine) History() []ComfortRecord {
	out := make([]ComfortRecord, len(c.history))
	copy(out, c.history)
	return out
}

func (c *ComfortEngine) State() ComfortState {
	s := ComfortState{RecentChanges: c.recentChanges}
	if c.current == nil || !c.current.IsActive() {
		return s
	}
	s.Active = true
	s.Intensity = c.current.Intensity
	s.Source = c.current.Source
	s.CoherenceLevel = c.current.CoherenceLevel
	s.TimeStable = c.current.TimeStable
	s.EmotionalDampening = c.current.EmotionalDampening()
	s.IdentityStability = c.current.IdentityStabilityBoost()
	s.DurationRemaining = c.current.ActiveDuration
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
