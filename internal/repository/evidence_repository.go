package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/forensic-case-service/internal/domain"
)

// EvidenceRepository handles persistence for evidence-file metadata.
// File bytes live in the blob store; only the opaque storage reference
// is recorded here.
type EvidenceRepository interface {
	Create(ctx context.Context, e *domain.Evidence) error
	GetByID(ctx context.Context, id string) (*domain.Evidence, error)
	ListByCase(ctx context.Context, caseID string) ([]domain.Evidence, error)
	Delete(ctx context.Context, id string) error
}

type evidenceRepository struct {
	pool *pgxpool.Pool
}

// NewEvidenceRepository instantiates the repository.
func NewEvidenceRepository(pool *pgxpool.Pool) EvidenceRepository {
	return &evidenceRepository{pool: pool}
}

func (r *evidenceRepository) Create(ctx context.Context, e *domain.Evidence) error {
	const query = `
        INSERT INTO evidence (case_id, kind, file_name, media_type, size_bytes, storage_ref, notes, uploaded_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, uploaded_at`
	err := r.pool.QueryRow(ctx, query,
		e.CaseID,
		e.Kind,
		e.FileName,
		e.MediaType,
		e.SizeBytes,
		e.StorageRef,
		e.Notes,
		e.UploadedBy,
	).Scan(&e.ID, &e.UploadedAt)
	return mapPgError(err)
}

func (r *evidenceRepository) GetByID(ctx context.Context, id string) (*domain.Evidence, error) {
	const query = `
        SELECT id, case_id, kind, file_name, media_type, size_bytes, storage_ref, notes, uploaded_by, uploaded_at
        FROM evidence WHERE id=$1`
	var e domain.Evidence
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.CaseID,
		&e.Kind,
		&e.FileName,
		&e.MediaType,
		&e.SizeBytes,
		&e.StorageRef,
		&e.Notes,
		&e.UploadedBy,
		&e.UploadedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &e, nil
}

func (r *evidenceRepository) ListByCase(ctx context.Context, caseID string) ([]domain.Evidence, error) {
	const query = `
        SELECT id, case_id, kind, file_name, media_type, size_bytes, storage_ref, notes, uploaded_by, uploaded_at
        FROM evidence WHERE case_id=$1 ORDER BY uploaded_at DESC, id`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.Evidence
	for rows.Next() {
		var e domain.Evidence
		if err := rows.Scan(
			&e.ID,
			&e.CaseID,
			&e.Kind,
			&e.FileName,
			&e.MediaType,
			&e.SizeBytes,
			&e.StorageRef,
			&e.Notes,
			&e.UploadedBy,
			&e.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *evidenceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM evidence WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
