package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/renaissancebro/AGI-seed/internal/domain"
)

type IdentityStore struct {
	db *pgxpool.Pool
}

func NewIdentityStore(db *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{db: db}
}

// Create inserts the identity row and its beliefs in one transaction.
func (s *IdentityStore) Create(ctx context.Context, snap *domain.IdentitySnapshot) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO identities (id, core_label, loss_aversion, emotions_enabled, mass, resistance)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		snap.ID, snap.CoreLabel, snap.LossAversion, snap.EmotionsEnabled, snap.Mass, snap.Resistance,
	).Scan(&snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}

	if err := insertBeliefs(ctx, tx, snap.ID, snap.Beliefs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *IdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.IdentitySnapshot, error) {
	snap := &domain.IdentitySnapshot{}
	err := s.db.QueryRow(ctx,
		`SELECT id, core_label, loss_aversion, emotions_enabled, mass, resistance, created_at, updated_at
		 FROM identities WHERE id = $1`,
		id,
	).Scan(&snap.ID, &snap.CoreLabel, &snap.LossAversion, &snap.EmotionsEnabled, &snap.Mass, &snap.Resistance, &snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT name, strength, baseline_strength, experience_threshold, experience_count
		 FROM beliefs WHERE identity_id = $1
		 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query beliefs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b domain.BeliefSnapshot
		if err := rows.Scan(&b.Name, &b.Strength, &b.BaselineStrength, &b.ExperienceThreshold, &b.ExperienceCount); err != nil {
			return nil, fmt.Errorf("scan belief: %w", err)
		}
		snap.Beliefs = append(snap.Beliefs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save rewrites the aggregate fields and replaces the belief rows.
func (s *IdentityStore) Save(ctx context.Context, snap *domain.IdentitySnapshot) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`UPDATE identities
		 SET core_label = $2, loss_aversion = $3, emotions_enabled = $4, mass = $5, resistance = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		snap.ID, snap.CoreLabel, snap.LossAversion, snap.EmotionsEnabled, snap.Mass, snap.Resistance,
	).Scan(&snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM beliefs WHERE identity_id = $1`, snap.ID); err != nil {
		return fmt.Errorf("clear beliefs: %w", err)
	}
	if err := insertBeliefs(ctx, tx, snap.ID, snap.Beliefs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *IdentityStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM identities ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func insertBeliefs(ctx context.Context, tx pgx.Tx, identityID uuid.UUID, beliefs []domain.BeliefSnapshot) error {
	if len(beliefs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, b := range beliefs {
		batch.Queue(
			`INSERT INTO beliefs (identity_id, position, name, strength, baseline_strength, experience_threshold, experience_count)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			identityID, i, b.Name, b.Strength, b.BaselineStrength, b.ExperienceThreshold, b.ExperienceCount,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert beliefs: %w", err)
	}
	return nil
}
