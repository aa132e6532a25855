package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
	"github.com/renaissancebro/AGI-seed/internal/store"
)

type IdentityStore struct {
	db *sql.DB
}

func NewIdentityStore(d *DB) *IdentityStore {
	return &IdentityStore{db: d.db}
}

func (s *IdentityStore) Create(ctx context.Context, snap *domain.IdentitySnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO identities (id, core_label, loss_aversion, emotions_enabled, mass, resistance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), snap.CoreLabel, snap.LossAversion, snap.EmotionsEnabled, snap.Mass, snap.Resistance, now, now,
	)
	if err != nil {
		if isConstraint(err) {
			return store.ErrConflict
		}
		return err
	}

	if err := insertBeliefs(ctx, tx, snap.ID, snap.Beliefs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	snap.CreatedAt, snap.UpdatedAt = now, now
	return nil
}

func (s *IdentityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.IdentitySnapshot, error) {
	snap := &domain.IdentitySnapshot{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, core_label, loss_aversion, emotions_enabled, mass, resistance, created_at, updated_at
		 FROM identities WHERE id = ?`,
		id.String(),
	).Scan(&snap.ID, &snap.CoreLabel, &snap.LossAversion, &snap.EmotionsEnabled, &snap.Mass, &snap.Resistance, &snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, strength, baseline_strength, experience_threshold, experience_count
		 FROM beliefs WHERE identity_id = ?
		 ORDER BY position ASC`,
		id.String(),
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
	return snap, rows.Err()
}

func (s *IdentityStore) Save(ctx context.Context, snap *domain.IdentitySnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE identities
		 SET core_label = ?, loss_aversion = ?, emotions_enabled = ?, mass = ?, resistance = ?, updated_at = ?
		 WHERE id = ?`,
		snap.CoreLabel, snap.LossAversion, snap.EmotionsEnabled, snap.Mass, snap.Resistance, now, snap.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM beliefs WHERE identity_id = ?`, snap.ID.String()); err != nil {
		return fmt.Errorf("clear beliefs: %w", err)
	}
	if err := insertBeliefs(ctx, tx, snap.ID, snap.Beliefs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	snap.UpdatedAt = now
	return nil
}

func (s *IdentityStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM identities ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertBeliefs(ctx context.Context, tx *sql.Tx, identityID uuid.UUID, beliefs []domain.BeliefSnapshot) error {
	if len(beliefs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO beliefs (identity_id, position, name, strength, baseline_strength, experience_threshold, experience_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare beliefs: %w", err)
	}
	defer stmt.Close()

	for i, b := range beliefs {
		if _, err := stmt.ExecContext(ctx, identityID.String(), i, b.Name, b.Strength, b.BaselineStrength, b.ExperienceThreshold, b.ExperienceCount); err != nil {
			return fmt.Errorf("insert belief %q: %w", b.Name, err)
		}
	}
	return nil
}
