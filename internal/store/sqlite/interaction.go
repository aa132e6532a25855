package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/store"
)

type InteractionStore struct {
	db *sql.DB
}

func NewInteractionStore(d *DB) *InteractionStore {
	return &InteractionStore{db: d.db}
}

const interactionColumns = `id, identity_id, user_id, prompt, response, mass, resistance, feedback, created_at`

func (s *InteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	feedback, err := encodeFeedback(i.Feedback)
	if err != nil {
		return err
	}
	id := uuid.New()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interactions (`+interactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), i.IdentityID.String(), i.UserID, i.Prompt, i.Response, i.Mass, i.Resistance, feedback, now,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	i.ID, i.CreatedAt = id, now
	return nil
}

func (s *InteractionStore) ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]domain.Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE identity_id = ? ORDER BY seq ASC`,
		identityID.String(),
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
	row := s.db.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE identity_id = ? ORDER BY seq DESC LIMIT 1`,
		identityID.String(),
	)
	i, err := scanInteraction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (s *InteractionStore) AttachFeedback(ctx context.Context, id uuid.UUID, fb domain.InteractionFeedback) error {
	feedback, err := encodeFeedback(&fb)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE interactions SET feedback = ? WHERE id = ?`, feedback, id.String())
	if err != nil {
		return fmt.Errorf("attach feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func encodeFeedback(fb *domain.InteractionFeedback) (sql.NullString, error) {
	if fb == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(fb)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal feedback: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row scanner) (*domain.Interaction, error) {
	i := &domain.Interaction{}
	var feedback sql.NullString
	if err := row.Scan(&i.ID, &i.IdentityID, &i.UserID, &i.Prompt, &i.Response, &i.Mass, &i.Resistance, &feedback, &i.CreatedAt); err != nil {
		return nil, err
	}
	if feedback.Valid {
		i.Feedback = &domain.InteractionFeedback{}
		if err := json.Unmarshal([]byte(feedback.String), i.Feedback); err != nil {
			return nil, fmt.Errorf("unmarshal feedback: %w", err)
		}
	}
	return i, nil
}
