package emotion

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/renaissancebro/AGI-seed/internal/domain"
)

const (
	PrideAchievementThreshold = 0.4
	PrideEmitThreshold        = 0.2
	PrideDecayRate            = 0.15

	MandatoryFailureAlignment = 0.3
	MandatoryFailureStrength  = 0.5

	prideHistorySize = 10
)

var ErrInvalidRecognition = errors.New("invalid recognition type")

type Recognition string

const (
	RecognitionSelf      Recognition = "self"
	RecognitionPeer      Recognition = "peer"
	RecognitionPublic    Recognition = "public"
	RecognitionAuthority Recognition = "authority"
)

var RecognitionMultipliers = map[Recognition]float64{
	RecognitionSelf:      1.0,
	RecognitionPeer:      1.5,
	RecognitionPublic:    2.0,
	RecognitionAuthority: 2.5,
}

// PrideAction is a completed achievement measured against aspirations.
type PrideAction struct {
	Content      string
	DomainVector []float64
	Recognition  Recognition
}

func NewPrideAction(content string, domainVector []float64, recognition Recognition) (PrideAction, error) {
	if recognition == "" {
		recognition = RecognitionSelf
	}
	if _, ok := RecognitionMultipliers[recognition]; !ok {
		return PrideAction{}, fmt.Errorf("%w: %q", ErrInvalidRecognition, recognition)
	}
	return PrideAction{
		Content:      content,
		DomainVector: domain.NormalizeVector(domainVector),
		Recognition:  recognition,
	}, nil
}

func (a PrideAction) RecognitionMultiplier() float64 {
	if m, ok := RecognitionMultipliers[a.Recognition]; ok {
		return m
	}
	return 1.0
}

// AspirationAlignment is the cosine similarity of the two vectors with
// negative values clamped to zero.
func AspirationAlignment(action, aspiration []float64) float64 {
	sim, ok := cosineSimilarity(action, aspiration)
	if !ok {
		return 0
	}
	return math.Max(0, sim)
}

func PrideIntensity(aspirationStrength, alignment, recognitionMultiplier, sensitivity float64) float64 {
	return clamp01(aspirationStrength * alignment * recognitionMultiplier * sensitivity)
}

// MandatoryFailure reports whether a weakly aligned action counts as failing
// an identity-defining aspiration.
func MandatoryFailure(a *domain.Aspiration, alignment float64) bool {
	return a.Mandatory() && alignment < MandatoryFailureAlignment && a.Strength > MandatoryFailureStrength
}

type PrideEmotion struct {
	Intensity         float64 `json:"intensity"`
	SourceAchievement string  `json:"source_achievement"`
	Aspiration        string  `json:"aspiration"`
	Duration          int     `json:"duration"`
	ActiveDuration    int     `json:"active_duration"`
}

func NewPrideEmotion(intensity float64, achievement, aspiration string) *PrideEmotion {
	d := max(1, int(intensity*4))
	return &PrideEmotion{
		Intensity:         intensity,
		SourceAchievement: achievement,
		Aspiration:        aspiration,
		Duration:          d,
		ActiveDuration:    d,
	}
}

func (p *PrideEmotion) BeliefStrengthening() float64 { return p.Intensity * 0.15 }
func (p *PrideEmotion) ConfidenceBoost() float64     { return p.Intensity * 0.8 }
func (p *PrideEmotion) ShameBuffer() float64         { return p.Intensity * 0.6 }

func (p *PrideEmotion) Decay(rate float64) {
	if p.ActiveDuration > 0 {
		p.ActiveDuration--
		return
	}
	p.Intensity *= 1 - rate
}

func (p *PrideEmotion) IsActive() bool {
	return p.Intensity > ActiveThreshold
}

type PrideRecord struct {
	Intensity   float64     `json:"intensity"`
	Aspiration  string      `json:"aspiration"`
	Action      string      `json:"action"`
	Recognition Recognition `json:"recognition_type"`
	Step        int         `json:"timestamp"`
}

type PrideResult struct {
	Emotion    *PrideEmotion      `json:"emotion,omitempty"`
	Alignments map[string]float64 `json:"alignments"`
	Effects    []string           `json:"effects"`
}

type PrideState struct {
	Active            bool    `json:"active"`
	Intensity         float64 `json:"intensity"`
	Achievement       string  `json:"achievement,omitempty"`
	Aspiration        string  `json:"aspiration,omitempty"`
	ConfidenceBoost   float64 `json:"confidence_boost,omitempty"`
	ShameBuffer       float64 `json:"shame_buffer,omitempty"`
	DurationRemaining int     `json:"duration_remaining,omitempty"`
}

// PrideEngine evaluates achievements against an identity's aspirations.
type PrideEngine struct {
	identity    *domain.Identity
	sensitivity float64

	aspirations []*domain.Aspiration
	current     *PrideEmotion
	recent      []PrideRecord
	steps       int
}

func NewPrideEngine(id *domain.Identity, sensitivity float64) *PrideEngine {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	return &PrideEngine{identity: id, sensitivity: sensitivity}
}

// AddAspiration registers a, replacing any aspiration with the same name.
func (p *PrideEngine) AddAspiration(a *domain.Aspiration) {
	for i, existing := range p.aspirations {
		if existing.Name == a.Name {
			p.aspirations[i] = a
			return
		}
	}
	p.aspirations = append(p.aspirations, a)
}

// Aspirations returns the live aspirations in insertion order.
func (p *PrideEngine) Aspirations() []*domain.Aspiration {
	out := make([]*domain.Aspiration, len(p.aspirations))
	copy(out, p.aspirations)
	return out
}

// Achieve scores action against every aspiration. Mandatory aspirations the
// action clearly misses are penalized. The best-aligned aspiration above the
// achievement threshold produces pride when its intensity is high enough.
func (p *PrideEngine) Achieve(action PrideAction) PrideResult {
	res := PrideResult{
		Alignments: make(map[string]float64, len(p.aspirations)),
		Effects:    []string{},
	}

	var best *domain.Aspiration
	var bestIntensity float64
	for _, asp := range p.aspirations {
		alignment := AspirationAlignment(action.DomainVector, asp.DomainVector)
		res.Alignments[asp.Name] = alignment

		if MandatoryFailure(asp, alignment) {
			res.Effects = append(res.Effects, "mandatory aspiration missed: "+asp.Name)
			p.applyMandatoryFailure(asp, alignment)
		}

		if alignment > PrideAchievementThreshold {
			intensity := PrideIntensity(asp.Strength, alignment, action.RecognitionMultiplier(), p.sensitivity)
			if intensity > bestIntensity {
				bestIntensity = intensity
				best = asp
			}
		}
	}

	if best == nil || bestIntensity <= PrideEmitThreshold {
		return res
	}

	emo := NewPrideEmotion(bestIntensity, action.Content, best.Name)
	p.current = emo
	res.Emotion = emo
	p.applyEffects(emo, best)
	res.Effects = append(res.Effects, "pride triggered for aspiration: "+best.Name)
	p.record(emo, action)
	return res
}

func (p *PrideEngine) applyEffects(emo *PrideEmotion, asp *domain.Aspiration) {
	boost := emo.BeliefStrengthening()
	if asp.Mandatory() {
		boost *= 1.5
	}
	asp.Strength = math.Min(1, asp.Strength+boost)
	p.adjustRelatedBeliefs(asp.Name, boost*0.3)
}

func (p *PrideEngine) applyMandatoryFailure(asp *domain.Aspiration, alignment float64) {
	impact := (MandatoryFailureAlignment - alignment) * 0.2
	asp.Strength = math.Max(0, asp.Strength-impact)
	p.adjustRelatedBeliefs(asp.Name, -impact*0.5)
}

// adjustRelatedBeliefs nudges every belief sharing a word with the
// aspiration name.
func (p *PrideEngine) adjustRelatedBeliefs(aspirationName string, delta float64) {
	words := strings.Fields(strings.ToLower(aspirationName))
	for _, b := range p.identity.Beliefs() {
		if sharesWord(strings.Fields(strings.ToLower(b.Name())), words) {
			_ = p.identity.AdjustBelief(b.Name(), delta)
		}
	}
}

func sharesWord(a, b []string) bool {
	for _, x := range b {
		for _, y := range a {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (p *PrideEngine) record(emo *PrideEmotion, action PrideAction) {
	p.recent = append(p.recent, PrideRecord{
		Intensity:   emo.Intensity,
		Aspiration:  emo.Aspiration,
		Action:      action.Content,
		Recognition: action.Recognition,
		Step:        p.steps,
	})
	p.steps++
	if len(p.recent) > prideHistorySize {
		p.recent = p.recent[len(p.recent)-prideHistorySize:]
	}
}

func (p *PrideEngine) Decay() {
	if p.current == nil {
		return
	}
	if p.current.IsActive() {
		p.current.Decay(PrideDecayRate)
		return
	}
	p.current = nil
}

// BufferShame reduces a shame intensity by the active pride's buffer.
func (p *PrideEngine) BufferShame(intensity float64) float64 {
	if p.current == nil || !p.current.IsActive() {
		return intensity
	}
	return math.Max(0, intensity*(1-p.current.ShameBuffer()))
}

func (p *PrideEngine) Current() *PrideEmotion {
	return p.current
}

// Recent returns up to the last 10 pride states, oldest first.
func (p *PrideEngine) Recent() []PrideRecord {
	out := make([]PrideRecord, len(p.recent))
	copy(out, p.recent)
	return out
}

func (p *PrideEngine) State() PrideState {
	if p.current == nil || !p.current.IsActive() {
		return PrideState{}
	}
	return PrideState{
		Active:            true,
		Intensity:         p.current.Intensity,
		Achievement:       p.current.SourceAchievement,
		Aspiration:        p.current.Aspiration,
		ConfidenceBoost:   p.current.ConfidenceBoost(),
		ShameBuffer:       p.current.ShameBuffer(),
		DurationRemaining: p.current.ActiveDuration,
	}
}
