package domain

import (
	"context"

	"github.com/google/uuid"
)

type IdentityStore interface {
	Create(ctx context.Context, s *IdentitySnapshot) error
	GetByID(ctx context.Context, id uuid.UUID) (*IdentitySnapshot, error)
	// Save replaces the stored beliefs and aggregate fields with s.
	Save(ctx context.Context, s *IdentitySnapshot) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type InteractionStore interface {
	Create(ctx context.Context, i *Interaction) error
	// ListByIdentity returns interactions oldest first.
	ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]Interaction, error)
	Latest(ctx context.Context, identityID uuid.UUID) (*Interaction, error)
	AttachFeedback(ctx context.Context, id uuid.UUID, fb InteractionFeedback) error
}

type AspirationStore interface {
	UpsertAspiration(ctx context.Context, identityID uuid.UUID, a *Aspiration) error
	ListAspirations(ctx context.Context, identityID uuid.UUID) ([]Aspiration, error)
	UpsertStandard(ctx context.Context, identityID uuid.UUID, s *InternalizedStandard) error
	ListStandards(ctx context.Context, identityID uuid.UUID) ([]InternalizedStandard, error)
}

// CompletionClient produces n independent samples for a prompt, in order.
type CompletionClient interface {
	Generate(ctx context.Context, prompt string, n int) ([]string, error)
}
