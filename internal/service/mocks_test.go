package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockIdentityStore mocks the IdentityStore interface.
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Create(ctx context.Context, s *domain.IdentitySnapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockIdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.IdentitySnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdentitySnapshot), args.Error(1)
}

func (m *MockIdentityStore) Save(ctx context.Context, s *domain.IdentitySnapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockIdentityStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockInteractionStore mocks the InteractionStore interface.
type MockInteractionStore struct {
	mock.Mock
}

func (m *MockInteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	args := m.Called(ctx, i)
	if args.Error(0) == nil {
		i.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockInteractionStore) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]domain.Interaction, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Interaction), args.Error(1)
}

func (m *MockInteractionStore) Latest(ctx context.Context, identityID uuid.UUID) (*domain.Interaction, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interaction), args.Error(1)
}

func (m *MockInteractionStore) AttachFeedback(ctx context.Context, id uuid.UUID, fb domain.InteractionFeedback) error {
	args := m.Called(ctx, id, fb)
	return args.Error(0)
}

// MockAspirationStore mocks the AspirationStore interface.
type MockAspirationStore struct {
	mock.Mock
}

func (m *MockAspirationStore) UpsertAspiration(ctx context.Context, identityID uuid.UUID, a *domain.Aspiration) error {
	args := m.Called(ctx, identityID, a)
	return args.Error(0)
}

func (m *MockAspirationStore) ListAspirations(ctx context.Context, identityID uuid.UUID) ([]domain.Aspiration, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Aspiration), args.Error(1)
}

func (m *MockAspirationStore) UpsertStandard(ctx context.Context, identityID uuid.UUID, s *domain.InternalizedStandard) error {
	args := m.Called(ctx, identityID, s)
	return args.Error(0)
}

func (m *MockAspirationStore) ListStandards(ctx context.Context, identityID uuid.UUID) ([]domain.InternalizedStandard, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InternalizedStandard), args.Error(1)
}

var anySnapshot = mock.AnythingOfType("*domain.IdentitySnapshot")

// storedIdentity builds a snapshot as the store would return it. Each belief
// starts at its baseline.
func storedIdentity(id uuid.UUID, emotions bool, beliefs map[string]float64, order ...string) *domain.IdentitySnapshot {
	s := &domain.IdentitySnapshot{ID: id, CoreLabel: "test", LossAversion: domain.DefaultLossAversionFactor, EmotionsEnabled: emotions}
	for _, name := range order {
		s.Beliefs = append(s.Beliefs, domain.BeliefSnapshot{
			Name:                name,
			Strength:            beliefs[name],
			BaselineStrength:    beliefs[name],
			ExperienceThreshold: domain.DefaultExperienceThreshold,
		})
		s.Mass += beliefs[name]
	}
	s.Resistance = s.Mass * s.Mass
	return s
}
