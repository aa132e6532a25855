package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/renaissancebro/AGI-seed/internal/domain"
)

type InteractionStore struct {
	db *pgxpool.Pool
}

func NewInteractionStore(db *pgxpool.Pool) *InteractionStore {
	return &InteractionStore{db: db}
}

func (s *InteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	feedbackJSON, err := marshalFeedback(i.Feedback)
	if err != nil {
		return err
	}

	err = s.db.QueryRow(ctx,
		`INSERT INTO interactions (identity_id, user_id, prompt, response, mass, resistance, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		i.IdentityID, i.UserID, i.Prompt, i.Response, i.Mass, i.Resistance, feedbackJSON,
	).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// ListByIdentity returns every interaction for the identity, oldest first.
func (s *InteractionStore) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]domain.Interaction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, identity_id, user_id, prompt, response, mass, resistance, feedback, created_at
		 FROM interactions WHERE identity_id = $1
		 ORDER BY created_at ASC, seq ASC`,
		identityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Interaction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (s *InteractionStore) Latest(ctx context.Context, identityID uuid.UUID) (*domain.Interaction, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, identity_id, user_id, prompt, response, mass, resistance, feedback, created_at
		 FROM interactions WHERE identity_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT 1`,
		identityID,
	)
	i, err := scanInteraction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (s *InteractionStore) AttachFeedback(ctx context.Context, id uuid.UUID, fb domain.InteractionFeedback) error {
	feedbackJSON, err := marshalFeedback(&fb)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE interactions SET feedback = $2 WHERE id = $1`,
		id, feedbackJSON,
	)
	if err != nil {
		return fmt.Errorf("attach feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func marshalFeedback(fb *domain.InteractionFeedback) ([]byte, error) {
	if fb == nil {
		return nil, nil
	}
	b, err := json.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}
	return b, nil
}

func scanInteraction(row pgx.Row) (*domain.Interaction, error) {
	i := &domain.Interaction{}
	var feedbackJSON []byte
	if err := row.Scan(&i.ID, &i.IdentityID, &i.UserID, &i.Prompt, &i.Response, &i.Mass, &i.Resistance, &feedbackJSON, &i.CreatedAt); err != nil {
		return nil, err
	}
	if len(feedbackJSON) > 0 {
		i.Feedback = &domain.InteractionFeedback{}
		if err := json.Unmarshal(feedbackJSON, i.Feedback); err != nil {
			return nil, fmt.Errorf("unmarshal feedback: %w", err)
		}
	}
	return i, nil
}
