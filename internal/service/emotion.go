package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/emotion"
	"go.uber.org/zap"
)

// EmotionState is everything an identity currently feels.
type EmotionState struct {
	EmotionsEnabled bool                          `json:"emotions_enabled"`
	Active          map[string]float64            `json:"active,omitempty"`
	Templates       []emotion.TemplateState       `json:"templates,omitempty"`
	Comfort         emotion.ComfortState          `json:"comfort"`
	Pride           emotion.PrideState            `json:"pride"`
	Shame           emotion.ShameState            `json:"shame"`
	Aspirations     []domain.Aspiration           `json:"aspirations"`
	Standards       []domain.InternalizedStandard `json:"standards"`
}

// EmotionService exposes the Comfort, Pride and Shame engines of each
// identity. Engine effects on beliefs are persisted with the identity.
type EmotionService struct {
	registry    *Registry
	aspirations domain.AspirationStore
	logger      *zap.Logger
}

func NewEmotionService(registry *Registry, as domain.AspirationStore, logger *zap.Logger) *EmotionService {
	return &EmotionService{registry: registry, aspirations: as, logger: logger}
}

func (s *EmotionService) ProcessComfort(ctx context.Context, id uuid.UUID, in emotion.ComfortInput) (*emotion.ComfortResult, error) {
	var res emotion.ComfortResult
	_, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		res = e.comfort.Process(in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Emotion != nil {
		s.logger.Debug("comfort evaluated",
			zap.String("identity_id", id.String()),
			zap.Float64("intensity", res.Emotion.Intensity),
			zap.Strings("effects", res.Effects))
	}
	return &res, nil
}

// AddAspiration registers or replaces an aspiration by name.
func (s *EmotionService) AddAspiration(ctx context.Context, id uuid.UUID, a *domain.Aspiration) error {
	return s.registry.with(ctx, id, func(e *liveIdentity) error {
		if s.aspirations != nil {
			if err := s.aspirations.UpsertAspiration(ctx, id, a); err != nil {
				return fmt.Errorf("save aspiration: %w", err)
			}
		}
		e.pride.AddAspiration(a)
		return nil
	})
}

func (s *EmotionService) Achieve(ctx context.Context, id uuid.UUID, action emotion.PrideAction) (*emotion.PrideResult, error) {
	var res emotion.PrideResult
	_, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		res = e.pride.Achieve(action)
		return s.persistAspirations(ctx, id, e)
	})
	if err != nil {
		return nil, err
	}
	if res.Emotion != nil {
		s.logger.Info("pride experienced",
			zap.String("identity_id", id.String()),
			zap.String("aspiration", res.Emotion.Aspiration),
			zap.Float64("intensity", res.Emotion.Intensity))
	}
	return &res, nil
}

// persistAspirations stores aspiration strengths the pride engine changed.
func (s *EmotionService) persistAspirations(ctx context.Context, id uuid.UUID, e *liveIdentity) error {
	if s.aspirations == nil {
		return nil
	}
	for _, a := range e.pride.Aspirations() {
		if err := s.aspirations.UpsertAspiration(ctx, id, a); err != nil {
			return fmt.Errorf("save aspiration %q: %w", a.Name, err)
		}
	}
	return nil
}

// AddStandard registers or replaces a standard by name. A standard without a
// vector is encoded from its name and description.
func (s *EmotionService) AddStandard(ctx context.Context, id uuid.UUID, st *domain.InternalizedStandard) error {
	if len(st.SemanticVector) == 0 {
		st.SemanticVector = emotion.EncodeStandard(st.Name, st.Description)
	}
	return s.registry.with(ctx, id, func(e *liveIdentity) error {
		if s.aspirations != nil {
			if err := s.aspirations.UpsertStandard(ctx, id, st); err != nil {
				return fmt.Errorf("save standard: %w", err)
			}
		}
		e.shame.AddStandard(st)
		return nil
	})
}

func (s *EmotionService) PerformAction(ctx context.Context, id uuid.UUID, action emotion.ShameAction) (*emotion.ShameResult, error) {
	var res emotion.ShameResult
	_, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		res = e.shame.PerformAction(action)
		if s.aspirations == nil {
			return nil
		}
		for _, st := range e.shame.Standards() {
			if err := s.aspirations.UpsertStandard(ctx, id, st); err != nil {
				return fmt.Errorf("save standard %q: %w", st.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Emotion != nil {
		s.logger.Info("shame experienced",
			zap.String("identity_id", id.String()),
			zap.String("violation", res.Emotion.SourceViolation),
			zap.Float64("intensity", res.Emotion.Intensity))
	}
	return &res, nil
}

func (s *EmotionService) State(ctx context.Context, id uuid.UUID) (*EmotionState, error) {
	var st *EmotionState
	err := s.registry.with(ctx, id, func(e *liveIdentity) error {
		st = &EmotionState{
			EmotionsEnabled: e.emotions != nil,
			Comfort:         e.comfort.State(),
			Pride:           e.pride.State(),
			Shame:           e.shame.State(),
		}
		for _, a := range e.pride.Aspirations() {
			st.Aspirations = append(st.Aspirations, *a)
		}
		for _, std := range e.shame.Standards() {
			st.Standards = append(st.Standards, *std)
		}
		if e.emotions != nil {
			st.Active = e.emotions.ActiveEmotions()
			st.Templates = e.emotions.State()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}
