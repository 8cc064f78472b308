package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// SpecimenRepository handles persistence for specimens. Deletion is
// transactional: a specimen and its tests go together, no intermediate
// state with orphaned tests is observable.
type SpecimenRepository interface {
	Create(ctx context.Context, s *domain.Specimen) error
	GetByID(ctx context.Context, id string) (*domain.Specimen, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.Specimen, error)
	DeleteCascade(ctx context.Context, id string) error
}

type specimenRepository struct {
	pool *pgxpool.Pool
}

// NewSpecimenRepository instantiates the repository.
func NewSpecimenRepository(pool *pgxpool.Pool) SpecimenRepository {
	return &specimenRepository{pool: pool}
}

func (r *specimenRepository) Create(ctx context.Context, s *domain.Specimen) error {
	const query = `
        INSERT INTO specimens (case_id, name, description, type, quantity, collection_date)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.CaseID,
		s.Name,
		s.Description,
		s.Type,
		s.Quantity,
		s.CollectionDate,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapPgError(err)
}

func (r *specimenRepository) GetByID(ctx context.Context, id string) (*domain.Specimen, error) {
	const query = `
        SELECT id, case_id, name, description, type, quantity, collection_date, created_at, updated_at
        FROM specimens WHERE id=$1`
	var s domain.Specimen
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.CaseID,
		&s.Name,
		&s.Description,
		&s.Type,
		&s.Quantity,
		&s.CollectionDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &s, nil
}

func (r *specimenRepository) ListByCase(ctx context.Context, caseID string) ([]domain.Specimen, error) {
	const query = `
        SELECT id, case_id, name, description, type, quantity, collection_date, created_at, updated_at
        FROM specimens WHERE case_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.Specimen
	for rows.Next() {
		var s domain.Specimen
		if err := rows.Scan(
			&s.ID,
			&s.CaseID,
			&s.Name,
			&s.Description,
			&s.Type,
			&s.Quantity,
			&s.CollectionDate,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *specimenRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapPgError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM tests WHERE specimen_id=$1`, id); err != nil {
		return mapPgError(err)
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM specimens WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return mapPgError(tx.Commit(ctx))
}
