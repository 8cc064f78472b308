package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// TestRepository handles persistence for lab tests.
type TestRepository interface {
	Create(ctx context.Context, t *domain.Test) error
	Update(ctx context.Context, t *domain.Test) error
	GetByID(ctx context.Context, id string) (*domain.Test, error)
	ListBySpecimen(ctx context.Context, specimenID string) ([]domain.Test, error)
	Delete(ctx context.Context, id string) error
}

type testRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository instantiates the repository.
func NewTestRepository(pool *pgxpool.Pool) TestRepository {
	return &testRepository{pool: pool}
}

func (r *testRepository) Create(ctx context.Context, t *domain.Test) error {
	const query = `
        INSERT INTO tests (specimen_id, name, description, repeats, status, results)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		t.SpecimenID,
		t.Name,
		t.Description,
		t.Repeats,
		t.Status,
		t.Results,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return mapPgError(err)
}

func (r *testRepository) Update(ctx context.Context, t *domain.Test) error {
	const query = `
        UPDATE tests SET name=$1, description=$2, repeats=$3, status=$4, results=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		t.Name,
		t.Description,
		t.Repeats,
		t.Status,
		t.Results,
		t.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *testRepository) GetByID(ctx context.Context, id string) (*domain.Test, error) {
	const query = `
        SELECT id, specimen_id, name, description, repeats, status, results, created_at, updated_at
        FROM tests WHERE id=$1`
	var t domain.Test
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.SpecimenID,
		&t.Name,
		&t.Description,
		&t.Repeats,
		&t.Status,
		&t.Results,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &t, nil
}

func (r *testRepository) ListBySpecimen(ctx context.Context, specimenID string) ([]domain.Test, error) {
	const query = `
        SELECT id, specimen_id, name, description, repeats, status, results, created_at, updated_at
        FROM tests WHERE specimen_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, specimenID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.Test
	for rows.Next() {
		var t domain.Test
		if err := rows.Scan(
			&t.ID,
			&t.SpecimenID,
			&t.Name,
			&t.Description,
			&t.Repeats,
			&t.Status,
			&t.Results,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *testRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
