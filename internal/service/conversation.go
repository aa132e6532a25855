package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/store"
	"github.com/renaissancebro/AGI-seed/internal/verbalizer"
	"go.uber.org/zap"
)

const (
	DefaultSampleCount = 3

	// probeBelief is the single belief a consistency probe measures.
	probeBelief        = "response_consistency"
	probeMinLength     = 10
	probeLengthScale   = 100.0
	promptExcerptLimit = 30
)

var (
	ErrPromptEmpty   = errors.New("prompt is required")
	ErrFeedbackEmpty = errors.New("feedback is required")
	ErrNoSamples     = errors.New("completion client returned no samples")

	// ErrCompletion wraps any failure of the completion client.
	ErrCompletion = errors.New("completion failed")
)

// DefaultBeliefs is the starting belief set for a conversational identity.
func DefaultBeliefs() []BeliefSpec {
	return []BeliefSpec{
		{Name: domain.BeliefCommunicatesClearly, Strength: 0.5},
		{Name: domain.BeliefUnderstandsUsers, Strength: 0.5},
		{Name: domain.BeliefKnowledgeable, Strength: 0.5},
		{Name: domain.BeliefHelpful, Strength: 0.8},
		{Name: domain.BeliefValuesAccuracy, Strength: 0.7},
		{Name: domain.BeliefCurious, Strength: 0.6},
	}
}

// promptCue strengthens a belief when the prompt mentions any of its words.
type promptCue struct {
	words     []string
	belief    string
	intensity float64
	prefix    string
	source    string
}

var promptCues = []promptCue{
	{words: []string{"help", "assist", "support"}, belief: domain.BeliefHelpful, intensity: 0.3, prefix: "Helped with: ", source: "interaction"},
	{words: []string{"learn", "explain", "understand"}, belief: domain.BeliefCurious, intensity: 0.2, prefix: "Explained: ", source: "explanation"},
}

type FeedbackResult struct {
	Belief      string                   `json:"belief"`
	Valence     domain.Valence           `json:"processed_valence"`
	Intensity   float64                  `json:"processed_intensity"`
	Applied     bool                     `json:"applied"`
	Interaction *uuid.UUID               `json:"interaction_id,omitempty"`
	Identity    *domain.IdentitySnapshot `json:"identity"`
}

type ProbeResult struct {
	Response    string   `json:"response"`
	Samples     []string `json:"samples"`
	Mass        float64  `json:"mass"`
	Resistance  float64  `json:"gravitational_resistance"`
	Uncertainty float64  `json:"uncertainty"`
	Hedged      string   `json:"uncertainty_response"`
}

type ConversationStats struct {
	TotalConversations int                      `json:"total_conversations"`
	FeedbackReceived   int                      `json:"feedback_received"`
	Identity           *domain.IdentitySnapshot `json:"identity_summary"`
}

// ConversationService answers prompts through a completion client and lets
// the exchange, and any feedback on it, shape the identity.
type ConversationService struct {
	registry        *Registry
	interactions    domain.InteractionStore
	client          domain.CompletionClient
	tone            verbalizer.Profile
	uncertaintyTone verbalizer.Profile
	sampleCount     int
	logger          *zap.Logger
}

func NewConversationService(registry *Registry, is domain.InteractionStore, client domain.CompletionClient, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		registry:        registry,
		interactions:    is,
		client:          client,
		tone:            verbalizer.IdentityProfile,
		uncertaintyTone: verbalizer.UncertaintyProfile,
		sampleCount:     DefaultSampleCount,
		logger:          logger,
	}
}

func (s *ConversationService) SetTone(p verbalizer.Profile) {
	s.tone = p
}

func (s *ConversationService) SetUncertaintyTone(p verbalizer.Profile) {
	s.uncertaintyTone = p
}

func (s *ConversationService) SetSampleCount(n int) {
	if n > 0 {
		s.sampleCount = n
	}
}

// Respond samples the model, records the raw first sample and then learns from
// the prompt. The returned interaction carries the sample toned by the
// resistance measured before learning. Nothing changes if recording fails.
func (s *ConversationService) Respond(ctx context.Context, id uuid.UUID, prompt, userID string) (*domain.Interaction, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptEmpty
	}
	if _, err := s.registry.get(ctx, id); err != nil {
		return nil, err
	}

	samples, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var it *domain.Interaction
	_, err = s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		it = &domain.Interaction{
			IdentityID: id,
			UserID:     userID,
			Prompt:     prompt,
			Response:   samples[0],
			Mass:       e.identity.Mass(),
			Resistance: e.identity.GravitationalResistance(),
		}
		if err := s.interactions.Create(ctx, it); err != nil {
			return unchanged{fmt.Errorf("record interaction: %w", err)}
		}
		return learnFromPrompt(e, prompt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("responded",
		zap.String("identity_id", id.String()),
		zap.String("interaction_id", it.ID.String()),
		zap.Float64("resistance", it.Resistance))

	out := *it
	out.Response = s.tone.ApplyTone(it.Response, it.Resistance)
	return &out, nil
}

func learnFromPrompt(e *liveIdentity, prompt string) error {
	lower := strings.ToLower(prompt)
	for _, cue := range promptCues {
		if !containsAny(lower, cue.words) {
			continue
		}
		if _, ok := e.identity.Belief(cue.belief); !ok {
			continue
		}
		exp, err := domain.NewExperience(cue.prefix+excerpt(prompt, promptExcerptLimit), domain.ValencePositive, cue.intensity, cue.source)
		if err != nil {
			return err
		}
		if _, err := integrate(e, cue.belief, exp, false); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveFeedback classifies free-text feedback, attaches it to the latest
// interaction and then applies it to the belief the feedback type maps to.
// Feedback for a belief the identity lacks is recorded but not applied.
func (s *ConversationService) ReceiveFeedback(ctx context.Context, id uuid.UUID, text string, ft domain.FeedbackType) (*FeedbackResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrFeedbackEmpty
	}
	if ft == "" {
		ft = domain.FeedbackTypeGeneral
	}
	valence, intensity := domain.ClassifyFeedback(text)
	res := &FeedbackResult{
		Belief:    domain.FeedbackTarget(ft),
		Valence:   valence,
		Intensity: intensity,
	}

	exp, err := domain.NewExperience(text, valence, intensity, "user_feedback")
	if err != nil {
		return nil, err
	}

	snap, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		latest, err := s.interactions.Latest(ctx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return unchanged{fmt.Errorf("latest interaction: %w", err)}
		default:
			fb := domain.InteractionFeedback{Feedback: text, Type: ft, Valence: valence, Intensity: intensity}
			if err := s.interactions.AttachFeedback(ctx, latest.ID, fb); err != nil {
				return unchanged{fmt.Errorf("attach feedback: %w", err)}
			}
			res.Interaction = &latest.ID
		}

		if _, ok := e.identity.Belief(res.Belief); !ok {
			return nil
		}
		res.Applied = true
		_, err = integrate(e, res.Belief, exp, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Identity = snap

	s.logger.Info("feedback received",
		zap.String("identity_id", id.String()),
		zap.String("belief", res.Belief),
		zap.String("valence", string(valence)),
		zap.Float64("intensity", intensity),
		zap.Bool("applied", res.Applied))
	return res, nil
}

// Replay resets every belief to its baseline and re-applies all recorded
// feedback in order.
func (s *ConversationService) Replay(ctx context.Context, id uuid.UUID) (*domain.IdentitySnapshot, error) {
	history, err := s.interactions.ListByIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	replayed := 0
	snap, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		e.identity.ResetBeliefs()
		for _, it := range history {
			if it.Feedback == nil {
				continue
			}
			target := domain.FeedbackTarget(it.Feedback.Type)
			if _, ok := e.identity.Belief(target); !ok {
				continue
			}
			exp, err := domain.NewExperience(it.Feedback.Feedback, it.Feedback.Valence, it.Feedback.Intensity, "historical_feedback")
			if err != nil {
				return fmt.Errorf("interaction %s: %w", it.ID, err)
			}
			if _, err := integrate(e, target, exp, false); err != nil {
				return err
			}
			replayed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback replayed",
		zap.String("identity_id", id.String()),
		zap.Int("interactions", len(history)),
		zap.Int("feedback_applied", replayed),
		zap.Float64("mass", snap.Mass))
	return snap, nil
}

// Stats summarizes the conversation history and current identity.
func (s *ConversationService) Stats(ctx context.Context, id uuid.UUID) (*ConversationStats, error) {
	var snap *domain.IdentitySnapshot
	err := s.registry.with(ctx, id, func(e *liveIdentity) error {
		snap = e.snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	history, err := s.interactions.ListByIdentity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	stats := &ConversationStats{TotalConversations: len(history), Identity: snap}
	for _, it := range history {
		if it.Feedback != nil {
			stats.FeedbackReceived++
		}
	}
	return stats, nil
}

// Probe measures how consistent a batch of samples is without touching any
// stored identity. Each sample becomes an experience on a throwaway belief;
// the resulting resistance tones the first sample. The share of distinct
// samples is reported as uncertainty and tones a hedged variant.
func (s *ConversationService) Probe(ctx context.Context, prompt string) (*ProbeResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptEmpty
	}
	samples, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ident := domain.NewIdentity("probe")
	b, err := domain.NewBelief(probeBelief, 0.5)
	if err != nil {
		return nil, err
	}
	ident.AddBelief(b)

	for i, sample := range samples {
		length := utf8.RuneCountInString(sample)
		valence := domain.ValenceNegative
		if length > probeMinLength {
			valence = domain.ValencePositive
		}
		intensity := min(float64(length)/probeLengthScale, 1.0)
		exp, err := domain.NewExperience(excerpt(sample, 50), valence, intensity, fmt.Sprintf("response_%d", i))
		if err != nil {
			return nil, err
		}
		if _, err := ident.IntegrateExperience(exp, probeBelief); err != nil {
			return nil, err
		}
	}

	resistance := ident.GravitationalResistance()
	uncertainty := disagreement(samples)
	return &ProbeResult{
		Response:    s.tone.ApplyTone(samples[0], resistance),
		Samples:     samples,
		Mass:        ident.Mass(),
		Resistance:  resistance,
		Uncertainty: uncertainty,
		Hedged:      s.uncertaintyTone.ApplyTone(samples[0], uncertainty),
	}, nil
}

// disagreement is 0 when every sample is identical and 1 when all differ.
func disagreement(samples []string) float64 {
	if len(samples) < 2 {
		return 0
	}
	distinct := make(map[string]struct{}, len(samples))
	for _, s := range samples {
		distinct[strings.TrimSpace(s)] = struct{}{}
	}
	return float64(len(distinct)-1) / float64(len(samples)-1)
}

func (s *ConversationService) generate(ctx context.Context, prompt string) ([]string, error) {
	samples, err := s.client.Generate(ctx, prompt, s.sampleCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrCompletion, ErrNoSamples)
	}
	return samples, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
