package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/store"
	"go.uber.org/zap"
)

var (
	ErrCoreLabelMissing = errors.New("core_label is required")
	ErrTargetMissing    = errors.New("target_belief is required")
	ErrIdentityConflict = errors.New("identity already exists")
	ErrDuplicateBelief  = errors.New("duplicate belief name")
)

// BeliefSpec describes a belief to create. Zero values take the domain
// defaults; Baseline defaults to Strength.
type BeliefSpec struct {
	Name                string   `json:"name"`
	Strength            float64  `json:"strength"`
	Baseline            *float64 `json:"baseline_strength,omitempty"`
	ExperienceThreshold int      `json:"experience_threshold,omitempty"`
}

func (s BeliefSpec) build() (*domain.Belief, error) {
	var opts []domain.BeliefOption
	if s.Baseline != nil {
		opts = append(opts, domain.WithBaseline(*s.Baseline))
	}
	if s.ExperienceThreshold != 0 {
		opts = append(opts, domain.WithExperienceThreshold(s.ExperienceThreshold))
	}
	return domain.NewBelief(s.Name, s.Strength, opts...)
}

// IntegrationResult reports one experience integration.
type IntegrationResult struct {
	Belief         string             `json:"belief"`
	OldStrength    float64            `json:"old_strength"`
	NewStrength    float64            `json:"new_strength"`
	Mass           float64            `json:"mass"`
	Resistance     float64            `json:"gravitational_resistance"`
	Modulation     domain.Modulation  `json:"modulation,omitempty"`
	Modulated      bool               `json:"modulation_applied"`
	ActiveEmotions map[string]float64 `json:"active_emotions,omitempty"`
}

type IdentityService struct {
	registry       *Registry
	store          domain.IdentityStore
	logger         *zap.Logger
	lossAversion   float64
	recoveryFactor float64
}

func NewIdentityService(registry *Registry, is domain.IdentityStore, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		registry:       registry,
		store:          is,
		logger:         logger,
		lossAversion:   domain.DefaultLossAversionFactor,
		recoveryFactor: domain.DefaultRecoveryFactor,
	}
}

func (s *IdentityService) SetLossAversion(f float64) {
	if f > 0 {
		s.lossAversion = f
	}
}

func (s *IdentityService) SetRecoveryFactor(f float64) {
	if f > 0 {
		s.recoveryFactor = f
	}
}

func (s *IdentityService) Create(ctx context.Context, coreLabel string, enableEmotions bool, beliefs []BeliefSpec) (*domain.IdentitySnapshot, error) {
	coreLabel = strings.TrimSpace(coreLabel)
	if coreLabel == "" {
		return nil, ErrCoreLabelMissing
	}

	ident := domain.NewIdentity(coreLabel)
	ident.LossAversion = s.lossAversion
	seen := make(map[string]bool, len(beliefs))
	for _, spec := range beliefs {
		if seen[spec.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBelief, spec.Name)
		}
		seen[spec.Name] = true
		b, err := spec.build()
		if err != nil {
			return nil, err
		}
		ident.AddBelief(b)
	}

	e := newLiveIdentity(uuid.New(), ident, enableEmotions, s.registry.sensitivity)
	snap := e.snapshot()
	if err := s.store.Create(ctx, snap); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrIdentityConflict
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	s.registry.put(e)

	s.logger.Info("identity created",
		zap.String("identity_id", snap.ID.String()),
		zap.String("core_label", coreLabel),
		zap.Int("beliefs", len(snap.Beliefs)),
		zap.Bool("emotions_enabled", enableEmotions),
		zap.Float64("mass", snap.Mass))
	return snap, nil
}

func (s *IdentityService) Get(ctx context.Context, id uuid.UUID) (*domain.IdentitySnapshot, error) {
	var snap *domain.IdentitySnapshot
	err := s.registry.with(ctx, id, func(e *liveIdentity) error {
		snap = e.snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// AddBelief inserts or overwrites a belief.
func (s *IdentityService) AddBelief(ctx context.Context, id uuid.UUID, spec BeliefSpec) (*domain.IdentitySnapshot, error) {
	b, err := spec.build()
	if err != nil {
		return nil, err
	}
	snap, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		e.identity.AddBelief(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("belief added",
		zap.String("identity_id", id.String()),
		zap.String("belief", spec.Name),
		zap.Float64("strength", b.Strength()),
		zap.Float64("mass", snap.Mass))
	return snap, nil
}

// IntegrateExperience feeds exp to the target belief. With applyModulation
// the emotion system's modulation reshapes exp before the update; otherwise
// it is only reported.
func (s *IdentityService) IntegrateExperience(ctx context.Context, id uuid.UUID, target string, exp domain.Experience, applyModulation bool) (*IntegrationResult, error) {
	if target == "" {
		return nil, ErrTargetMissing
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}

	var res *IntegrationResult
	_, err := s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		r, err := integrate(e, target, exp, applyModulation)
		if err != nil {
			return unchanged{err}
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("experience integrated",
		zap.String("identity_id", id.String()),
		zap.String("belief", target),
		zap.String("valence", string(exp.Valence)),
		zap.Float64("intensity", exp.Intensity),
		zap.Float64("old_strength", res.OldStrength),
		zap.Float64("new_strength", res.NewStrength),
		zap.Float64("mass", res.Mass))
	return res, nil
}

// integrate runs one experience against a locked entry and feeds the mass
// change to the comfort engine.
func integrate(e *liveIdentity, target string, exp domain.Experience, applyModulation bool) (*IntegrationResult, error) {
	b, ok := e.identity.Belief(target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrBeliefNotFound, target)
	}
	oldStrength := b.Strength()
	oldMass := e.identity.Mass()

	var (
		mod domain.Modulation
		err error
	)
	if applyModulation {
		mod, err = e.identity.IntegrateModulatedExperience(exp, target)
	} else {
		mod, err = e.identity.IntegrateExperience(exp, target)
	}
	if err != nil {
		return nil, err
	}
	e.comfort.AddIdentityChange(math.Abs(e.identity.Mass() - oldMass))

	res := &IntegrationResult{
		Belief:      target,
		OldStrength: oldStrength,
		NewStrength: b.Strength(),
		Mass:        e.identity.Mass(),
		Resistance:  e.identity.GravitationalResistance(),
		Modulation:  mod,
		Modulated:   applyModulation,
	}
	if e.emotions != nil {
		res.ActiveEmotions = e.emotions.ActiveEmotions()
	}
	return res, nil
}

// Recover runs one elastic recovery step and advances every emotion clock.
func (s *IdentityService) Recover(ctx context.Context, id uuid.UUID) (*domain.IdentitySnapshot, error) {
	return s.registry.mutate(ctx, id, func(e *liveIdentity) error {
		e.identity.ApplyElasticRecovery(s.recoveryFactor)
		e.decay()
		return nil
	})
}

// RecoverAll recovers every stored identity. Failures are logged and skipped.
// Identities that were not loaded beforehand are released again afterwards.
func (s *IdentityService) RecoverAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list identities: %w", err)
	}

	recovered := 0
	for _, id := range ids {
		wasLoaded := s.registry.loaded(id)
		_, err := s.Recover(ctx, id)
		if !wasLoaded {
			s.registry.release(id)
		}
		if err != nil {
			s.logger.Error("recovery failed for identity",
				zap.String("identity_id", id.String()),
				zap.Error(err))
			continue
		}
		recovered++
	}
	return recovered, nil
}
