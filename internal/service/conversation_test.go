package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/llm"
	"github.com/renaissancebro/AGI-seed/internal/store"
	"github.com/renaissancebro/AGI-seed/internal/verbalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func defaultBeliefSnapshot(id uuid.UUID) *domain.IdentitySnapshot {
	beliefs := map[string]float64{}
	var order []string
	for _, b := range DefaultBeliefs() {
		beliefs[b.Name] = b.Strength
		order = append(order, b.Name)
	}
	return storedIdentity(id, false, beliefs, order...)
}

type conversationFixture struct {
	identities   *MockIdentityStore
	interactions *MockInteractionStore
	client       *llm.MockClient
	svc          *ConversationService
	registry     *Registry
}

func newConversationFixture() *conversationFixture {
	f := &conversationFixture{
		identities:   new(MockIdentityStore),
		interactions: new(MockInteractionStore),
		client:       llm.NewMockClient(),
	}
	f.registry = NewRegistry(f.identities, nil, 1.0)
	f.svc = NewConversationService(f.registry, f.interactions, f.client, zap.NewNop())
	return f
}

func (f *conversationFixture) strength(t *testing.T, id uuid.UUID, name string) float64 {
	t.Helper()
	var s float64
	require.NoError(t, f.registry.with(context.Background(), id, func(e *liveIdentity) error {
		b, ok := e.identity.Belief(name)
		require.True(t, ok)
		s = b.Strength()
		return nil
	}))
	return s
}

func TestDefaultBeliefs(t *testing.T) {
	beliefs := DefaultBeliefs()
	require.Len(t, beliefs, 6)
	mass := 0.0
	for _, b := range beliefs {
		mass += b.Strength
	}
	assert.InDelta(t, 3.6, mass, 1e-9)
}

func TestConversationService_Respond(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(defaultBeliefSnapshot(id), nil)
	f.identities.On("Save", ctx, anySnapshot).Return(nil)
	f.interactions.On("Create", ctx, mock.AnythingOfType("*domain.Interaction")).Return(nil)
	f.client.Responses = []string{"Go is a language.", "other", "third"}

	it, err := f.svc.Respond(ctx, id, "Can you help me understand Go?", "user1")
	require.NoError(t, err)

	// Resistance 3.6^2 is above the top cutoff, so the text is untouched.
	assert.Equal(t, "Go is a language.", it.Response)
	assert.InDelta(t, 3.6, it.Mass, 1e-9)
	assert.InDelta(t, 12.96, it.Resistance, 1e-9)
	assert.Equal(t, "user1", it.UserID)
	assert.NotEqual(t, uuid.Nil, it.ID)

	require.Len(t, f.client.GenerateCalls, 1)
	assert.Equal(t, DefaultSampleCount, f.client.GenerateCalls[0].N)

	assert.InDelta(t, 0.80006, f.strength(t, id, domain.BeliefHelpful), 1e-12)
	assert.InDelta(t, 0.60008, f.strength(t, id, domain.BeliefCurious), 1e-12)
	assert.Equal(t, 0.5, f.strength(t, id, domain.BeliefKnowledgeable))
}

func TestConversationService_RespondTonesLightIdentity(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(storedIdentity(id, false, map[string]float64{"x": 0.4}, "x"), nil)
	f.identities.On("Save", ctx, anySnapshot).Return(nil)
	f.interactions.On("Create", ctx, mock.AnythingOfType("*domain.Interaction")).Return(nil)
	f.client.Responses = []string{"answer"}

	it, err := f.svc.Respond(ctx, id, "What is Python?", "")
	require.NoError(t, err)
	assert.Equal(t, verbalizer.IdentityProfile.LowPrefix+"answer", it.Response)
}

func TestConversationService_RespondRecordsRawSample(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(storedIdentity(id, false, map[string]float64{"x": 0.4}, "x"), nil)
	f.identities.On("Save", ctx, anySnapshot).Return(nil)
	f.interactions.On("Create", ctx, mock.AnythingOfType("*domain.Interaction")).Return(nil)
	f.client.Responses = []string{"answer"}

	it, err := f.svc.Respond(ctx, id, "What is Python?", "")
	require.NoError(t, err)

	recorded := f.interactions.Calls[0].Arguments.Get(1).(*domain.Interaction)
	assert.Equal(t, "answer", recorded.Response)
	assert.Equal(t, recorded.ID, it.ID)
	assert.Equal(t, verbalizer.IdentityProfile.LowPrefix+"answer", it.Response)
}

func TestConversationService_RespondRecordFailureLeavesIdentity(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(defaultBeliefSnapshot(id), nil)
	f.interactions.On("Create", ctx, mock.AnythingOfType("*domain.Interaction")).Return(errors.New("db down"))

	_, err := f.svc.Respond(ctx, id, "Can you help me understand Go?", "")
	require.ErrorContains(t, err, "db down")

	f.identities.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Equal(t, 0.8, f.strength(t, id, domain.BeliefHelpful))
	assert.Equal(t, 0.6, f.strength(t, id, domain.BeliefCurious))
	f.identities.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestConversationService_RespondErrors(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()

	_, err := f.svc.Respond(ctx, id, "  ", "")
	assert.ErrorIs(t, err, ErrPromptEmpty)

	f.identities.On("GetByID", ctx, id).Return(nil, store.ErrNotFound).Once()
	_, err = f.svc.Respond(ctx, id, "hi", "")
	assert.ErrorIs(t, err, ErrIdentityNotFound)
	assert.Empty(t, f.client.GenerateCalls)

	f.identities.On("GetByID", ctx, id).Return(defaultBeliefSnapshot(id), nil)
	f.client.GenerateError = errors.New("rate limited")
	_, err = f.svc.Respond(ctx, id, "hi", "")
	assert.ErrorContains(t, err, "rate limited")
	assert.ErrorIs(t, err, ErrCompletion)
	f.interactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConversationService_ReceiveFeedback(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	latest := &domain.Interaction{ID: uuid.New(), IdentityID: id}

	tests := []struct {
		name      string
		text      string
		ft        domain.FeedbackType
		belief    string
		valence   domain.Valence
		intensity float64
		strength  float64
	}{
		{"clear and helpful", "That was very clear and helpful!", domain.FeedbackTypeClarity, domain.BeliefCommunicatesClearly, domain.ValencePositive, 2.0 / 3.0, 0.5 + (2.0/3.0)*0.5*0.001},
		{"confusing", "That was confusing and wrong", domain.FeedbackTypeKnowledge, domain.BeliefKnowledgeable, domain.ValenceNegative, 2.0 / 3.0, 0.5 - (2.0/3.0)*2*0.5*0.001},
		{"neutral defaults to general", "ok", "", domain.BeliefCommunicatesClearly, domain.ValencePositive, 0.1, 0.5 + 0.1*0.5*0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConversationFixture()
			f.identities.On("GetByID", ctx, id).Return(defaultBeliefSnapshot(id), nil)
			f.identities.On("Save", ctx, anySnapshot).Return(nil)
			f.interactions.On("Latest", ctx, id).Return(latest, nil)
			f.interactions.On("AttachFeedback", ctx, latest.ID, mock.AnythingOfType("domain.InteractionFeedback")).Return(nil)

			res, err := f.svc.ReceiveFeedback(ctx, id, tt.text, tt.ft)
			require.NoError(t, err)
			assert.Equal(t, tt.belief, res.Belief)
			assert.Equal(t, tt.valence, res.Valence)
			assert.InDelta(t, tt.intensity, res.Intensity, 1e-12)
			assert.True(t, res.Applied)
			require.NotNil(t, res.Interaction)
			assert.Equal(t, latest.ID, *res.Interaction)
			assert.InDelta(t, tt.strength, f.strength(t, id, tt.belief), 1e-12)

			fb := f.interactions.Calls[len(f.interactions.Calls)-1].Arguments.Get(2).(domain.InteractionFeedback)
			assert.Equal(t, tt.text, fb.Feedback)
			assert.Equal(t, tt.valence, fb.Valence)
		})
	}
}

func TestConversationService_ReceiveFeedbackAttachFailure(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	latest := &domain.Interaction{ID: uuid.New(), IdentityID: id}
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(defaultBeliefSnapshot(id), nil)
	f.interactions.On("Latest", ctx, id).Return(latest, nil)
	f.interactions.On("AttachFeedback", ctx, latest.ID, mock.AnythingOfType("domain.InteractionFeedback")).Return(errors.New("db down"))

	_, err := f.svc.ReceiveFeedback(ctx, id, "That was very clear and helpful!", domain.FeedbackTypeClarity)
	require.ErrorContains(t, err, "db down")

	f.identities.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Equal(t, 0.5, f.strength(t, id, domain.BeliefCommunicatesClearly))
}

func TestConversationService_ReceiveFeedbackWithoutHistoryOrBelief(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(storedIdentity(id, false, map[string]float64{"other": 0.5}, "other"), nil)
	f.identities.On("Save", ctx, anySnapshot).Return(nil)
	f.interactions.On("Latest", ctx, id).Return(nil, store.ErrNotFound)

	res, err := f.svc.ReceiveFeedback(ctx, id, "great", domain.FeedbackTypeClarity)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Nil(t, res.Interaction)
	assert.Equal(t, 0.5, res.Identity.Mass)
	f.interactions.AssertNotCalled(t, "AttachFeedback", mock.Anything, mock.Anything, mock.Anything)

	_, err = f.svc.ReceiveFeedback(ctx, id, "", domain.FeedbackTypeClarity)
	assert.ErrorIs(t, err, ErrFeedbackEmpty)
}

func TestConversationService_Replay(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := storedIdentity(id, false, map[string]float64{domain.BeliefCommunicatesClearly: 0.5}, domain.BeliefCommunicatesClearly)
	stored.Beliefs[0].Strength = 0.3
	stored.Beliefs[0].ExperienceCount = 40

	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(stored, nil)
	f.identities.On("Save", ctx, anySnapshot).Return(nil)
	f.interactions.On("ListByIdentity", ctx, id).Return([]domain.Interaction{
		{ID: uuid.New(), Feedback: &domain.InteractionFeedback{Feedback: "perfect", Type: domain.FeedbackTypeClarity, Valence: domain.ValencePositive, Intensity: 1.0}},
		{ID: uuid.New()},
		{ID: uuid.New(), Feedback: &domain.InteractionFeedback{Feedback: "wrong", Type: domain.FeedbackTypeKnowledge, Valence: domain.ValenceNegative, Intensity: 0.5}},
	}, nil)

	snap, err := f.svc.Replay(ctx, id)
	require.NoError(t, err)
	require.Len(t, snap.Beliefs, 1)
	assert.InDelta(t, 0.5005, snap.Beliefs[0].Strength, 1e-12)
	assert.Equal(t, 1, snap.Beliefs[0].ExperienceCount)
}

func TestConversationService_Stats(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	f := newConversationFixture()
	f.identities.On("GetByID", ctx, id).Return(defaultBeliefSnapshot(id), nil)
	f.interactions.On("ListByIdentity", ctx, id).Return([]domain.Interaction{
		{ID: uuid.New(), Feedback: &domain.InteractionFeedback{Feedback: "good"}},
		{ID: uuid.New()},
	}, nil)

	stats, err := f.svc.Stats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalConversations)
	assert.Equal(t, 1, stats.FeedbackReceived)
	assert.InDelta(t, 3.6, stats.Identity.Mass, 1e-9)
}

func TestConversationService_Probe(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture()
	f.client.Responses = []string{"short", "a considerably longer answer of forty c"}

	res, err := f.svc.Probe(ctx, "Explain gravity")
	require.NoError(t, err)
	require.Len(t, res.Samples, 3)
	assert.Equal(t, "short", res.Samples[2])

	// short: -0.05*2*0.5, long: +0.39*0.50005, short: -0.05*2*(1-s2); all scaled by 0.001
	s := 0.5 - 0.05*2*0.5*0.001
	s += 0.39 * (1 - s) * 0.001
	s -= 0.05 * 2 * (1 - s) * 0.001
	assert.InDelta(t, s, res.Mass, 1e-12)
	assert.InDelta(t, s*s, res.Resistance, 1e-12)
	assert.Equal(t, verbalizer.IdentityProfile.MidPrefix+"short", res.Response)

	// Two distinct answers across three samples.
	assert.InDelta(t, 0.5, res.Uncertainty, 1e-12)
	assert.Equal(t, verbalizer.UncertaintyProfile.HighPrefix+"short", res.Hedged)

	f.identities.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	_, err = f.svc.Probe(ctx, "")
	assert.ErrorIs(t, err, ErrPromptEmpty)
}

func TestDisagreement(t *testing.T) {
	assert.Equal(t, 0.0, disagreement(nil))
	assert.Equal(t, 0.0, disagreement([]string{"a"}))
	assert.Equal(t, 0.0, disagreement([]string{"a", "a ", "a"}))
	assert.Equal(t, 1.0, disagreement([]string{"a", "b", "c"}))
}
