package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renaissancebro/AGI-seed/internal/domain"
)

type AspirationStore struct {
	db *sql.DB
}

func NewAspirationStore(d *DB) *AspirationStore {
	return &AspirationStore{db: d.db}
}

func (s *AspirationStore) UpsertAspiration(ctx context.Context, identityID uuid.UUID, a *domain.Aspiration) error {
	vec, err := encodeVector(a.DomainVector)
	if err != nil {
		return err
	}
	return s.db.QueryRowContext(ctx,
		`INSERT INTO aspirations (id, identity_id, name, description, domain_vector, strength, integration_style, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (identity_id, name) DO UPDATE SET
			description = excluded.description,
			domain_vector = excluded.domain_vector,
			strength = excluded.strength,
			integration_style = excluded.integration_style
		 RETURNING id`,
		uuid.NewString(), identityID.String(), a.Name, a.Description, vec, a.Strength, string(a.IntegrationStyle), time.Now().UTC(),
	).Scan(&a.ID)
}

func (s *AspirationStore) ListAspirations(ctx context.Context, identityID uuid.UUID) ([]domain.Aspiration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, domain_vector, strength, integration_style
		 FROM aspirations WHERE identity_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		identityID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list aspirations: %w", err)
	}
	defer rows.Close()

	var out []domain.Aspiration
	for rows.Next() {
		var (
			a     domain.Aspiration
			vec   sql.NullString
			style string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &vec, &a.Strength, &style); err != nil {
			return nil, fmt.Errorf("scan aspiration: %w", err)
		}
		a.IntegrationStyle = domain.IntegrationStyle(style)
		if a.DomainVector, err = decodeVector(vec); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *AspirationStore) UpsertStandard(ctx context.Context, identityID uuid.UUID, st *domain.InternalizedStandard) error {
	vec, err := encodeVector(st.SemanticVector)
	if err != nil {
		return err
	}
	return s.db.QueryRowContext(ctx,
		`INSERT INTO standards (id, identity_id, name, description, strength, semantic_vector, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (identity_id, name) DO UPDATE SET
			description = excluded.description,
			strength = excluded.strength,
			semantic_vector = excluded.semantic_vector
		 RETURNING id`,
		uuid.NewString(), identityID.String(), st.Name, st.Description, st.Strength, vec, time.Now().UTC(),
	).Scan(&st.ID)
}

func (s *AspirationStore) ListStandards(ctx context.Context, identityID uuid.UUID) ([]domain.InternalizedStandard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, strength, semantic_vector
		 FROM standards WHERE identity_id = ?
		 ORDER BY created_at ASC, rowid ASC`,
		identityID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	defer rows.Close()

	var out []domain.InternalizedStandard
	for rows.Next() {
		var (
			st  domain.InternalizedStandard
			vec sql.NullString
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Strength, &vec); err != nil {
			return nil, fmt.Errorf("scan standard: %w", err)
		}
		if st.SemanticVector, err = decodeVector(vec); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func encodeVector(v []float64) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal vector: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeVector(s sql.NullString) ([]float64, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, fmt.Errorf("unmarshal vector: %w", err)
	}
	return v, nil
}
