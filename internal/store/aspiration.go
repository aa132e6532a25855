package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/renaissancebro/AGI-seed/internal/domain"
)

// AspirationStore persists Pride aspirations and Shame standards. Both are
// unique by name within an identity.
type AspirationStore struct {
	db *pgxpool.Pool
}

func NewAspirationStore(db *pgxpool.Pool) *AspirationStore {
	return &AspirationStore{db: db}
}

func (s *AspirationStore) UpsertAspiration(ctx context.Context, identityID uuid.UUID, a *domain.Aspiration) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO aspirations (identity_id, name, description, domain_vector, strength, integration_style)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (identity_id, name) DO UPDATE SET
			description = EXCLUDED.description,
			domain_vector = EXCLUDED.domain_vector,
			strength = EXCLUDED.strength,
			integration_style = EXCLUDED.integration_style,
			updated_at = NOW()
		 RETURNING id`,
		identityID, a.Name, a.Description, toVector(a.DomainVector), a.Strength, a.IntegrationStyle,
	).Scan(&a.ID)
}

func (s *AspirationStore) ListAspirations(ctx context.Context, identityID uuid.UUID) ([]domain.Aspiration, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, domain_vector, strength, integration_style
		 FROM aspirations WHERE identity_id = $1
		 ORDER BY created_at ASC`,
		identityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list aspirations: %w", err)
	}
	defer rows.Close()

	var out []domain.Aspiration
	for rows.Next() {
		var a domain.Aspiration
		var vec *pgvector.Vector
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &vec, &a.Strength, &a.IntegrationStyle); err != nil {
			return nil, fmt.Errorf("scan aspiration: %w", err)
		}
		a.DomainVector = fromVector(vec)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *AspirationStore) UpsertStandard(ctx context.Context, identityID uuid.UUID, st *domain.InternalizedStandard) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO standards (identity_id, name, description, strength, semantic_vector)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (identity_id, name) DO UPDATE SET
			description = EXCLUDED.description,
			strength = EXCLUDED.strength,
			semantic_vector = EXCLUDED.semantic_vector,
			updated_at = NOW()
		 RETURNING id`,
		identityID, st.Name, st.Description, st.Strength, toVector(st.SemanticVector),
	).Scan(&st.ID)
}

func (s *AspirationStore) ListStandards(ctx context.Context, identityID uuid.UUID) ([]domain.InternalizedStandard, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, strength, semantic_vector
		 FROM standards WHERE identity_id = $1
		 ORDER BY created_at ASC`,
		identityID,
	)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	defer rows.Close()

	var out []domain.InternalizedStandard
	for rows.Next() {
		var st domain.InternalizedStandard
		var vec *pgvector.Vector
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.Strength, &vec); err != nil {
			return nil, fmt.Errorf("scan standard: %w", err)
		}
		st.SemanticVector = fromVector(vec)
		out = append(out, st)
	}
	return out, rows.Err()
}

// toVector narrows an engine vector to pgvector's float32 storage. Values
// read back differ from the originals by float32 rounding (about 1e-7
// relative); cosine comparisons are unaffected at that scale.
func toVector(v []float64) *pgvector.Vector {
	if len(v) == 0 {
		return nil
	}
	f := make([]float32, len(v))
	for i, x := range v {
		f[i] = float32(x)
	}
	vec := pgvector.NewVector(f)
	return &vec
}

func fromVector(vec *pgvector.Vector) []float64 {
	if vec == nil {
		return nil
	}
	f := vec.Slice()
	out := make([]float64, len(f))
	for i, x := range f {
		out[i] = float64(x)
	}
	return out
}
